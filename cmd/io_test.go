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
package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/launix-de/schemecore/scm"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestHost(t *testing.T) (*host, *bytes.Buffer) {
	t.Helper()
	s, err := scm.New(scm.DefaultConfig())
	require.NoError(t, err)
	h := &host{s: s, dir: t.TempDir()}
	h.setupIO()
	var out bytes.Buffer
	s.SetOutput(&out)
	t.Cleanup(func() { require.NoError(t, h.close()) })
	return h, &out
}

func (h *host) mustEval(t *testing.T, code string) string {
	t.Helper()
	h.mu.Lock()
	defer h.mu.Unlock()
	vals, err := h.evalString("test", code)
	require.NoError(t, err, code)
	require.Len(t, vals, 1, code)
	return scm.Repr(vals[0])
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestPrint(t *testing.T) {
	h, out := newTestHost(t)
	require.Equal(t, "#t", h.mustEval(t, `(print "a" 1 #\b)`))
	require.Equal(t, "a1b\n", out.String())
}

func TestEnv(t *testing.T) {
	h, _ := newTestHost(t)
	t.Setenv("SCHEMECORE_TEST_VAR", "set")
	require.Equal(t, `"set"`, h.mustEval(t, `(env "SCHEMECORE_TEST_VAR")`))
	require.Equal(t, `"none"`, h.mustEval(t, `(env "SCHEMECORE_TEST_UNSET" "none")`))
	require.Equal(t, `""`, h.mustEval(t, `(env "SCHEMECORE_TEST_UNSET")`))
}

func TestImportRelative(t *testing.T) {
	h, _ := newTestHost(t)
	writeFile(t, filepath.Join(h.dir, "lib", "main.scm"), `(define x 1) (import "b.scm")`)
	writeFile(t, filepath.Join(h.dir, "lib", "b.scm"), `(define y (+ x 1)) y`)
	dir := h.dir
	require.Equal(t, "2", h.mustEval(t, `(import "lib/main.scm")`))
	require.Equal(t, dir, h.dir)
	require.Equal(t, "2", h.mustEval(t, "y"))

	h.mu.Lock()
	_, err := h.evalString("test", `(import "missing.scm")`)
	h.mu.Unlock()
	require.ErrorContains(t, err, "missing.scm")
}

func TestLoad(t *testing.T) {
	h, _ := newTestHost(t)
	writeFile(t, filepath.Join(h.dir, "a.txt"), "one\ntwo\nthree")
	require.Equal(t, `"one\ntwo\nthree"`, h.mustEval(t, `(load "a.txt")`))
	require.Equal(t, `(got "one\ntwo\nthree")`, h.mustEval(t, `(load "a.txt" (lambda (c) (list 'got c)))`))

	h.mustEval(t, "(define acc '())")
	require.Equal(t, "#t", h.mustEval(t, `(load "a.txt" (lambda (l) (set! acc (cons l acc))) "\n")`))
	require.Equal(t, `("three" "two\n" "one\n")`, h.mustEval(t, "acc"))

	h.mu.Lock()
	_, err := h.evalString("test", `(load "a.txt" (lambda (l) l) "ab")`)
	h.mu.Unlock()
	require.EqualError(t, err, "load delimiter must be 1 byte long")

	// an escape out of the line handler stops reading
	require.Equal(t, `"one\n"`, h.mustEval(t, `(call/cc (lambda (k) (load "a.txt" k "\n") 'not-reached))`))
}

func TestEvalStringValues(t *testing.T) {
	h, _ := newTestHost(t)
	h.mu.Lock()
	defer h.mu.Unlock()
	vals, err := h.evalString("test", "(define a 5) (values a (* a 2))")
	require.NoError(t, err)
	require.Len(t, vals, 2)
	require.Equal(t, 5, vals[0].Int())
	require.Equal(t, 10, vals[1].Int())

	_, err = h.evalString("test", "(+ 1")
	require.ErrorIs(t, err, scm.ErrIncomplete)
}

func TestWatch(t *testing.T) {
	h, _ := newTestHost(t)
	path := filepath.Join(h.dir, "watched.txt")
	writeFile(t, path, "v1")
	h.mustEval(t, "(define content #f)")
	require.Equal(t, "#t", h.mustEval(t, `(watch "watched.txt" (lambda (c) (set! content c)))`))
	require.Equal(t, `"v1"`, h.mustEval(t, "content"))

	writeFile(t, path, "v2")
	require.Eventually(t, func() bool {
		h.mu.Lock()
		defer h.mu.Unlock()
		v, err := h.s.Ref("content")
		return err == nil && scm.Repr(v) == `"v2"`
	}, 5*time.Second, 20*time.Millisecond)
}

// logBuffer collects log output written by the watcher goroutine
type logBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *logBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *logBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatchRemovedFile(t *testing.T) {
	h, _ := newTestHost(t)
	var logs logBuffer
	h.s.SetLogger(zerolog.New(&logs).Level(zerolog.DebugLevel))
	path := filepath.Join(h.dir, "watched.txt")
	writeFile(t, path, "v1")
	require.Equal(t, "#t", h.mustEval(t, `(watch "watched.txt" (lambda (c) c))`))

	require.NoError(t, os.Remove(path))
	require.Eventually(t, func() bool {
		out := logs.String()
		return strings.Contains(out, "reload failed") && strings.Contains(out, "rewatch")
	}, 5*time.Second, 20*time.Millisecond)
}
