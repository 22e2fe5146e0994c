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
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dc0d/onexit"
	"github.com/google/uuid"
	"github.com/launix-de/schemecore/scm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	commands   []string
	configFile string
	logLevel   string
	workdir    string
)

var rootCmd = &cobra.Command{
	Use:   "schemecore [files...]",
	Short: "embeddable Scheme interpreter with escape continuations and dynamic-wind",
	Long: `schemecore evaluates the given source files, then the -c commands.
Without files and commands it starts an interactive shell.`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	wd, _ := os.Getwd()
	rootCmd.Flags().StringArrayVarP(&commands, "command", "c", nil, "Execute scm command")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "schemecore.toml", "TOML configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (trace, debug, info, warn, error)")
	rootCmd.Flags().StringVar(&workdir, "wd", wd, "Working Directory for (import) and (load)")
	rootCmd.AddCommand(docsCmd)
}

// Execute is the entry point of the command line tool.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (scm.Config, error) {
	cfg, err := scm.LoadConfig(configFile)
	if err != nil {
		return cfg, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg, nil
}

func newHost(cfg scm.Config) (*host, error) {
	s, err := scm.New(cfg)
	if err != nil {
		return nil, err
	}
	lvl, err := cfg.Level()
	if err != nil {
		return nil, err
	}
	s.SetLogger(zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger().Level(lvl))
	h := &host{s: s, dir: workdir}
	h.setupIO()
	return h, nil
}

func run(cmd *cobra.Command, args []string) error {
	// init random generator for UUIDs
	uuid.SetRand(rand.Reader)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	h, err := newHost(cfg)
	if err != nil {
		return err
	}
	onexit.Register(func() { h.close() }) // close trace file and watchers on exit
	defer h.close()
	h.s.Log.Debug().Str("config", configFile).Msg("started")

	h.mu.Lock()
	for _, file := range args {
		if _, err := h.importFile(h.path(file)); err != nil {
			h.mu.Unlock()
			return fmt.Errorf("%s: %w", file, err)
		}
	}
	for _, command := range commands {
		vals, err := h.evalString("command line", command)
		if err != nil {
			h.mu.Unlock()
			return err
		}
		for _, v := range vals {
			fmt.Println(scm.Repr(v))
		}
	}
	h.mu.Unlock()

	if len(args) == 0 && len(commands) == 0 {
		fmt.Print(`schemecore Copyright (C) 2023-2026   Carl-Philip Hänsch
    This program comes with ABSOLUTELY NO WARRANTY;
    This is free software, and you are welcome to redistribute it
    under certain conditions;

    Type (help) to show help

`)
		history := cfg.HistoryFile
		if history != "" && !filepath.IsAbs(history) {
			if home, err := os.UserHomeDir(); err == nil {
				history = filepath.Join(home, history)
			}
		}
		return h.repl(history)
	}
	return nil
}

// evalString evaluates all forms of text and returns the values of the last one
func (h *host) evalString(source, text string) ([]scm.Scmer, error) {
	forms, err := scm.Read(h.s, source, text)
	if err != nil {
		return nil, err
	}
	var vals []scm.Scmer
	for _, form := range forms {
		if vals, err = h.s.EvalValues(form); err != nil {
			return nil, err
		}
	}
	return vals, nil
}
