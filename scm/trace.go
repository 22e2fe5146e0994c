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

import "io"
import "os"
import "fmt"
import "time"
import "path/filepath"
import "encoding/json"

// Tracefile writes chrome://tracing compatible JSON events.
type Tracefile struct {
	isFirst bool
	file    io.WriteCloser
	start   time.Time
}

// OpenTrace creates trace_<unixtime>.json inside dir.
func OpenTrace(dir string) (*Tracefile, error) {
	f, err := os.Create(filepath.Join(dir, "trace_"+fmt.Sprint(time.Now().Unix())+".json"))
	if err != nil {
		return nil, fmt.Errorf("open trace: %w", err)
	}
	return NewTrace(f), nil
}

func NewTrace(file io.WriteCloser) *Tracefile {
	file.Write([]byte("["))
	result := new(Tracefile)
	result.file = file
	result.isFirst = true
	result.start = time.Now()
	return result
}

func (t *Tracefile) Close() error {
	if _, err := t.file.Write([]byte("]")); err != nil {
		t.file.Close()
		return err
	}
	return t.file.Close()
}

// Duration wraps f into a begin/end pair
func (t *Tracefile) Duration(name string, cat string, f func() error) error {
	t.Event(name, cat, "B")
	defer t.Event(name, cat, "E")
	return f()
}

func (t *Tracefile) Event(name string, cat string, typ string) {
	t.EventFull(name, cat, typ, time.Since(t.start).Microseconds(), 0, os.Getpid())
}

/*
	@name string function
	@cat string comma separated categories (for filtering)
	@typ B/E for begin/end, i for instant events
	@ts timestamp in microseconds
	@tid thread id
	@pid process id
*/
func (t *Tracefile) EventFull(name string, cat string, typ string, ts int64, tid int, pid int) {
	if t.isFirst {
		t.isFirst = false
	} else {
		t.file.Write([]byte(",\n"))
	}
	t.file.Write([]byte("{\"name\": "))
	b, _ := json.Marshal(name)
	t.file.Write(b)
	t.file.Write([]byte(", \"cat\": "))
	b, _ = json.Marshal(cat)
	t.file.Write(b)
	t.file.Write([]byte(", \"ph\": \""))
	t.file.Write([]byte(typ))
	t.file.Write([]byte("\", \"ts\": "))
	b, _ = json.Marshal(ts)
	t.file.Write(b)
	t.file.Write([]byte(", \"pid\": "))
	b, _ = json.Marshal(pid)
	t.file.Write(b)
	t.file.Write([]byte(", \"tid\": "))
	b, _ = json.Marshal(tid)
	t.file.Write(b)
	t.file.Write([]byte(", \"s\": \"g\"}"))
}

// trace emits an instant event if tracing is on
func (s *State) trace(name string, cat string) {
	if s.tracefile != nil {
		s.tracefile.Event(name, cat, "i")
	}
}

// SetTrace opens or closes the trace file of the state.
func (s *State) SetTrace(on bool) error {
	if s.tracefile != nil {
		err := s.tracefile.Close()
		s.tracefile = nil
		if err != nil {
			return err
		}
	}
	if on {
		t, err := OpenTrace(s.cfg.TraceDir)
		if err != nil {
			return err
		}
		s.tracefile = t
	}
	s.cfg.Trace = on
	return nil
}
