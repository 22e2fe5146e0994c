/*
Copyright (C) 2024-2026  Carl-Philip Hänsch

	This program is free software: you can redistribute it and/or modify
	it under the terms of the GNU General Public License as published by
	the Free Software Foundation, either version 3 of the License, or
	(at your option) any later version.

	This program is distributed in the hope that it will be useful,
	but WITHOUT ANY WARRANTY; without even the implied warranty of
	MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
	GNU General Public License for more details.

	You should have received a copy of the GNU General Public License
	along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/
package scm

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	units "github.com/docker/go-units"
	"github.com/rs/zerolog"
)

// Config of one interpreter state. Sizes are counted in slots and may be
// written human readable ("4k", "1M").
type Config struct {
	StackSize      string `toml:"stack-size"`       // initial value stack
	FrameStackSize string `toml:"frame-stack-size"` // initial call-info stack
	MaxStackSize   string `toml:"max-stack-size"`
	MaxFrames      string `toml:"max-frames"`
	Trace          bool   `toml:"trace"`
	TraceDir       string `toml:"trace-dir"`
	LogLevel       string `toml:"log-level"`
	HistoryFile    string `toml:"history-file"`
}

func DefaultConfig() Config {
	return Config{
		StackSize:      "1k",
		FrameStackSize: "256",
		MaxStackSize:   "1M",
		MaxFrames:      "64k",
		TraceDir:       ".",
		LogLevel:       "warn",
		HistoryFile:    ".schemecore-history",
	}
}

// LoadConfig reads a TOML file on top of the defaults. A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	} else if err != nil {
		return cfg, err
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

type limits struct {
	stack, frames       int
	maxStack, maxFrames int
}

func parseSlots(name, size string) (int, error) {
	n, err := units.RAMInBytes(size)
	if err != nil {
		return 0, fmt.Errorf("config %s: %w", name, err)
	}
	if n < 1 {
		return 0, fmt.Errorf("config %s: must be positive, got %s", name, size)
	}
	return int(n), nil
}

func (c Config) limits() (l limits, err error) {
	if l.stack, err = parseSlots("stack-size", c.StackSize); err != nil {
		return
	}
	if l.frames, err = parseSlots("frame-stack-size", c.FrameStackSize); err != nil {
		return
	}
	if l.maxStack, err = parseSlots("max-stack-size", c.MaxStackSize); err != nil {
		return
	}
	if l.maxFrames, err = parseSlots("max-frames", c.MaxFrames); err != nil {
		return
	}
	if l.maxStack < l.stack || l.maxFrames < l.frames {
		err = fmt.Errorf("config: maximum stack sizes must not be smaller than the initial ones")
	}
	return
}

// Level parses LogLevel; an empty level disables logging.
func (c Config) Level() (zerolog.Level, error) {
	if c.LogLevel == "" {
		return zerolog.Disabled, nil
	}
	return zerolog.ParseLevel(c.LogLevel)
}

// Config returns a copy of the current settings.
func (s *State) Config() Config { return s.cfg }

var settingNames = []string{"StackSize", "FrameStackSize", "MaxStackSize", "MaxFrames", "Trace", "TraceDir", "LogLevel", "HistoryFile"}

func (s *State) setting(name string) (Scmer, bool) {
	switch name {
	case "StackSize":
		return NewString(s.cfg.StackSize), true
	case "FrameStackSize":
		return NewString(s.cfg.FrameStackSize), true
	case "MaxStackSize":
		return NewString(s.cfg.MaxStackSize), true
	case "MaxFrames":
		return NewString(s.cfg.MaxFrames), true
	case "Trace":
		return NewBool(s.cfg.Trace), true
	case "TraceDir":
		return NewString(s.cfg.TraceDir), true
	case "LogLevel":
		return NewString(s.cfg.LogLevel), true
	case "HistoryFile":
		return NewString(s.cfg.HistoryFile), true
	}
	return Scmer{}, false
}

// ChangeSetting updates one setting at runtime.
func (s *State) ChangeSetting(name string, v Scmer) error {
	cfg := s.cfg
	str := func() (string, error) {
		if v.IsString() {
			return v.Str().Data, nil
		}
		if v.IsInt() {
			return fmt.Sprint(v.Int()), nil
		}
		return "", TypeError("settings", "string", v)
	}
	var err error
	switch name {
	case "StackSize":
		cfg.StackSize, err = str()
	case "FrameStackSize":
		cfg.FrameStackSize, err = str()
	case "MaxStackSize":
		cfg.MaxStackSize, err = str()
	case "MaxFrames":
		cfg.MaxFrames, err = str()
	case "Trace":
		return s.SetTrace(v.Truthy())
	case "TraceDir":
		cfg.TraceDir, err = str()
	case "LogLevel":
		if cfg.LogLevel, err = str(); err == nil {
			var lvl zerolog.Level
			if lvl, err = cfg.Level(); err == nil {
				s.Log = s.Log.Level(lvl)
			}
		}
	case "HistoryFile":
		cfg.HistoryFile, err = str()
	default:
		return Errorf(KindUser, "unknown setting: %s", name)
	}
	if err != nil {
		return err
	}
	l, err := cfg.limits()
	if err != nil {
		return Errorf(KindUser, "%s", err.Error())
	}
	s.cfg, s.limits = cfg, l
	return nil
}

func init_settings() {
	DeclareTitle("Settings")
	Declare(&Declaration{
		"settings", "reads or changes interpreter settings\n(settings) lists all settings, (settings 'Key) reads one, (settings 'Key value) changes it.\nSizes are given human readable like \"64k\".",
		0, 2,
		[]DeclarationParameter{
			{"key", "symbol", "name of the setting"},
			{"value", "any", "new value"},
		}, "any",
		func(s *State) (Scmer, error) {
			var key *Symbol
			var value Scmer
			if err := s.GetArgs("|mo", &key, &value); err != nil {
				return invalid(), err
			}
			switch s.Argc() {
			case 0:
				d := NewDictObj()
				for _, name := range settingNames {
					v, _ := s.setting(name)
					d.Set(s.symbols.intern(name), v)
				}
				return NewDict(d), nil
			case 1:
				if v, ok := s.setting(key.Name); ok {
					return v, nil
				}
				return invalid(), Errorf(KindUser, "unknown setting: %s", key.Name)
			}
			if err := s.ChangeSetting(key.Name, value); err != nil {
				return invalid(), err
			}
			return NewBool(true), nil
		},
	})
}
