/*
Copyright (C) 2023-2026  Carl-Philip Hänsch

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
package cmd

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-multierror"
	"github.com/launix-de/schemecore/scm"
)

// host owns a State and the IO procedures around it. The core is single
// threaded; every access from another goroutine (file watchers) takes mu.
type host struct {
	mu       sync.Mutex
	s        *scm.State
	dir      string // directory (import) and (load) resolve against
	watchers []*fsnotify.Watcher
}

func (h *host) path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(h.dir, name)
}

// importFile evaluates a source file; nested imports are relative to it
func (h *host) importFile(filename string) (scm.Scmer, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return scm.NewUndef(), err
	}
	olddir := h.dir
	h.dir = filepath.Dir(filename)
	defer func() { h.dir = olddir }()
	return h.s.EvalString(filename, string(data))
}

func (h *host) close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	var result *multierror.Error
	for _, w := range h.watchers {
		if err := w.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	h.watchers = nil
	if err := h.s.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}

func init() {
	// the procedures are bound per host in setupIO, these are the docs
	scm.DeclareTitle("IO")
	scm.Declare(&scm.Declaration{
		Name: "print", Desc: "Prints values to the output port followed by a line break",
		MinParameter: 0, MaxParameter: -1,
		Params: []scm.DeclarationParameter{
			{Name: "value...", Type: "any", Desc: "values to print"},
		}, Returns: "bool", Fn: nil,
	})
	scm.Declare(&scm.Declaration{
		Name: "env", Desc: "returns the content of a environment variable",
		MinParameter: 1, MaxParameter: 2,
		Params: []scm.DeclarationParameter{
			{Name: "var", Type: "string", Desc: "envvar"},
			{Name: "default", Type: "string", Desc: "default if the env is not found"},
		}, Returns: "string", Fn: nil,
	})
	scm.Declare(&scm.Declaration{
		Name: "import", Desc: "Imports a .scm file into the global environment",
		MinParameter: 1, MaxParameter: 1,
		Params: []scm.DeclarationParameter{
			{Name: "filename", Type: "string", Desc: "filename relative to folder of source file"},
		}, Returns: "any", Fn: nil,
	})
	scm.Declare(&scm.Declaration{
		Name: "load", Desc: "Loads a file and returns the string",
		MinParameter: 1, MaxParameter: 3,
		Params: []scm.DeclarationParameter{
			{Name: "filename", Type: "string", Desc: "filename relative to folder of source file"},
			{Name: "linehandler", Type: "func", Desc: "handler that reads each line"},
			{Name: "delimiter", Type: "string", Desc: "delimiter to extract"},
		}, Returns: "string|bool", Fn: nil,
	})
	scm.Declare(&scm.Declaration{
		Name: "watch", Desc: "Loads a file and calls the callback. Whenever the file changes on disk, the file is load again.",
		MinParameter: 2, MaxParameter: 2,
		Params: []scm.DeclarationParameter{
			{Name: "filename", Type: "string", Desc: "filename relative to folder of source file"},
			{Name: "updatehandler", Type: "func", Desc: "handler that receives the file content func(content)"},
		}, Returns: "bool", Fn: nil,
	})
}

// setupIO binds the IO procedures into the state (scm does not provide them since it is sandboxable)
func (h *host) setupIO() {
	s := h.s
	s.Defun("print", func(s *scm.State) (scm.Scmer, error) {
		out := s.Output()
		for _, v := range s.Args() {
			if _, err := io.WriteString(out, scm.Display(v)); err != nil {
				return scm.NewUndef(), err
			}
		}
		_, err := out.Write([]byte{'\n'})
		return scm.NewBool(true), err
	})
	s.Defun("env", func(s *scm.State) (scm.Scmer, error) {
		var name string
		def := scm.NewString("")
		if err := s.GetArgs("z|o", &name, &def); err != nil {
			return scm.NewUndef(), err
		}
		if val, ok := os.LookupEnv(name); ok {
			return scm.NewString(val), nil
		}
		return def, nil
	})
	s.Defun("import", func(s *scm.State) (scm.Scmer, error) {
		var filename string
		if err := s.GetArgs("z", &filename); err != nil {
			return scm.NewUndef(), err
		}
		return h.importFile(h.path(filename))
	})
	s.Defun("load", func(s *scm.State) (scm.Scmer, error) {
		var filename, delimiter string
		var handler scm.Scmer
		if err := s.GetArgs("z|oz", &filename, &handler, &delimiter); err != nil {
			return scm.NewUndef(), err
		}
		filename = h.path(filename)
		if delimiter != "" {
			if len(delimiter) != 1 {
				return scm.NewUndef(), scm.Errorf(scm.KindUser, "load delimiter must be 1 byte long")
			}
			file, err := os.Open(filename)
			if err != nil {
				return scm.NewUndef(), err
			}
			defer file.Close()
			splitter := bufio.NewReader(file)
			for {
				str, err := splitter.ReadString(delimiter[0])
				if str != "" {
					if _, err := s.Apply(handler, scm.NewString(str)); err != nil {
						return scm.NewUndef(), err
					}
				}
				if err == io.EOF {
					break // file is finished
				} else if err != nil {
					return scm.NewUndef(), err
				}
			}
			return scm.NewBool(true), nil
		}
		data, err := os.ReadFile(filename)
		if err != nil {
			return scm.NewUndef(), err
		}
		if handler.IsProc() {
			return s.TailApply(handler, scm.NewString(string(data)))
		}
		return scm.NewString(string(data)), nil
	})
	s.Defun("watch", func(s *scm.State) (scm.Scmer, error) {
		var filename string
		var handler scm.Scmer
		if err := s.GetArgs("zo", &filename, &handler); err != nil {
			return scm.NewUndef(), err
		}
		filename = h.path(filename)
		reread := func() error {
			data, err := os.ReadFile(filename)
			if err != nil {
				return err
			}
			_, err = s.Apply(handler, scm.NewString(string(data)))
			return err
		}
		// read once at the beginning in sync
		if err := reread(); err != nil {
			return scm.NewUndef(), err
		}
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return scm.NewUndef(), err
		}
		if err := watcher.Add(filename); err != nil {
			watcher.Close()
			return scm.NewUndef(), err
		}
		h.watchers = append(h.watchers, watcher)
		go h.watch(watcher, filename, reread)
		return scm.NewBool(true), nil
	})
}

func (h *host) watch(watcher *fsnotify.Watcher, filename string, reread func() error) {
	for {
		select {
		case _, ok := <-watcher.Events:
			if !ok {
				return
			}
			// flush all other events; delay a bit, so we don't read empty files
		flush:
			for {
				time.Sleep(10 * time.Millisecond)
				select {
				case <-watcher.Events:
				default:
					break flush
				}
			}
			h.mu.Lock()
			if err := reread(); err != nil {
				h.s.Log.Error().Err(err).Str("file", filename).Msg("reload failed")
			}
			h.mu.Unlock()
			// text editors rename, so we have to rewatch
			if err := watcher.Add(filename); err != nil {
				h.s.Log.Warn().Err(err).Str("file", filename).Msg("rewatch")
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			h.s.Log.Warn().Err(err).Str("file", filename).Msg("watch")
		}
	}
}
