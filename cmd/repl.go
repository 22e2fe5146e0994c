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
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/launix-de/schemecore/scm"
)

var (
	newprompt    = color.GreenString(">") + " "
	contprompt   = color.GreenString(".") + " "
	resultprompt = color.RedString("=") + " "
	errorprefix  = color.New(color.FgRed, color.Bold).SprintFunc()
)

func (h *host) repl(historyFile string) error {
	l, err := readline.NewEx(&readline.Config{
		Prompt:            newprompt,
		HistoryFile:       historyFile,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return err
	}
	defer l.Close()
	l.CaptureExitSignal()

	oldline := ""
	for {
		line, err := l.Readline()
		line = oldline + line
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				return nil
			}
			oldline = ""
			l.SetPrompt(newprompt)
			continue
		} else if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		h.mu.Lock()
		vals, err := h.evalString("user prompt", line)
		h.mu.Unlock()
		if errors.Is(err, scm.ErrIncomplete) {
			// keep oldline
			oldline = line + "\n"
			l.SetPrompt(contprompt)
			continue
		}
		oldline = ""
		l.SetPrompt(newprompt)
		if err != nil {
			fmt.Println(errorprefix("error:"), err)
			continue
		}
		for _, v := range vals {
			if !v.IsUndef() {
				fmt.Println(resultprompt + scm.Repr(v))
			}
		}
	}
}
