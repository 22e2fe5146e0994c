/*
Copyright (C) 2026  Carl-Philip Hänsch

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
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadConfig(filepath.Join(dir, "missing.toml"))
	require.NoError(t, err)
	require.Equal(t, DefaultConfig(), cfg)

	path := filepath.Join(dir, "schemecore.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
stack-size = "4k"
max-frames = "1M"
log-level = "debug"
`), 0o644))
	cfg, err = LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "4k", cfg.StackSize)
	require.Equal(t, "1M", cfg.MaxFrames)
	require.Equal(t, "256", cfg.FrameStackSize)
	lvl, err := cfg.Level()
	require.NoError(t, err)
	require.Equal(t, zerolog.DebugLevel, lvl)

	l, err := cfg.limits()
	require.NoError(t, err)
	require.Equal(t, 4096, l.stack)
	require.Equal(t, 1024*1024, l.maxFrames)

	require.NoError(t, os.WriteFile(path, []byte("stack-size = "), 0o644))
	_, err = LoadConfig(path)
	require.Error(t, err)
}

func TestConfigLimits(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxStackSize = "0"
	_, err := cfg.limits()
	require.Error(t, err)

	cfg = DefaultConfig()
	cfg.LogLevel = ""
	lvl, err := cfg.Level()
	require.NoError(t, err)
	require.Equal(t, zerolog.Disabled, lvl)
}

func TestSettingsPrimitive(t *testing.T) {
	s := newState(t)
	require.Equal(t, `"1k"`, eval(t, s, "(settings 'StackSize)"))
	require.Equal(t, "#t", eval(t, s, `(settings 'MaxFrames "512")`))
	require.Equal(t, "512", s.Config().MaxFrames)
	require.Equal(t, 512, s.limits.maxFrames)
	require.Equal(t, "#t", eval(t, s, "(settings 'MaxFrames 1024)"))
	require.Equal(t, 1024, s.limits.maxFrames)

	// the maximum must not drop below the initial size
	e := evalError(t, s, "(settings 'MaxFrames 16)")
	require.Equal(t, KindUser, e.Kind)
	require.Equal(t, "(FrameStackSize HistoryFile LogLevel MaxFrames MaxStackSize StackSize Trace TraceDir)", eval(t, s, "(dictionary-keys (settings))"))

	e = evalError(t, s, "(settings 'NoSuchKey)")
	require.Equal(t, "unknown setting: NoSuchKey", e.Message)
	e = evalError(t, s, "(settings 'NoSuchKey 1)")
	require.Equal(t, "unknown setting: NoSuchKey", e.Message)

	// invalid sizes leave the settings untouched
	e = evalError(t, s, `(settings 'StackSize "huge")`)
	require.Equal(t, KindUser, e.Kind)
	require.Equal(t, "1k", s.Config().StackSize)
	e = evalError(t, s, "(settings 'StackSize 'big)")
	require.Equal(t, KindType, e.Kind)

	require.Equal(t, "#t", eval(t, s, `(settings 'LogLevel "error")`))
	require.Equal(t, zerolog.ErrorLevel, s.Log.GetLevel())
}

func TestTraceFile(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Trace = true
	cfg.TraceDir = t.TempDir()
	s, err := New(cfg)
	require.NoError(t, err)
	_, err = s.EvalString("test", "(call/cc (lambda (k) (dynamic-wind (lambda () 1) (lambda () (k 2)) (lambda () 3))))")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	files, err := filepath.Glob(filepath.Join(cfg.TraceDir, "trace_*.json"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	var events []struct {
		Name string `json:"name"`
		Cat  string `json:"cat"`
		Ph   string `json:"ph"`
	}
	require.NoError(t, json.Unmarshal(data, &events))
	var names []string
	for _, ev := range events {
		names = append(names, ev.Ph+" "+ev.Name)
	}
	require.Contains(t, names, "i capture")
	require.Contains(t, names, "i escape")
	require.Contains(t, names, "i wind out")
	require.Equal(t, "B", events[0].Ph)
	require.Equal(t, "E", events[len(events)-1].Ph)
}
