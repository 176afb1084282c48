// Package main provides the entry point for the Beauty interpreter.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/alexisbouchez/beautygo/evaluator"
	"github.com/alexisbouchez/beautygo/repl"
)

func main() {
	home, _ := os.UserHomeDir()
	configPath := flag.String("config", filepath.Join(home, ".beauty.yaml"), "REPL configuration file")
	debug := flag.Bool("debug", false, "log interpreter diagnostics to stderr")
	loadPath := flag.String("path", os.Getenv("BEAUTY_PATH"), "extra directories searched by order, separated by "+string(os.PathListSeparator))
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: beauty [options] [file]\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if *debug {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	opts := []evaluator.Option{evaluator.WithLogger(logger)}
	if *loadPath != "" {
		opts = append(opts, evaluator.WithLoadPath(filepath.SplitList(*loadPath)...))
	}
	interp := evaluator.New(opts...)

	if flag.NArg() > 0 {
		if err := runFile(interp, flag.Arg(0)); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := runREPL(interp, *configPath, logger); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runFile(interp *evaluator.Interpreter, filename string) error {
	content, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("could not read file: %w", err)
	}
	_, err = interp.Run(string(content), filename)
	return err
}

func runREPL(interp *evaluator.Interpreter, configPath string, logger *slog.Logger) error {
	cfg, err := repl.LoadConfig(configPath)
	if err != nil {
		return err
	}

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := expandHome(cfg.HistoryFile)
	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
		defer func() {
			f, err := os.Create(histPath)
			if err != nil {
				logger.Debug("cannot save history", "path", histPath, "err", err)
				return
			}
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}()
	}

	return repl.New(interp, os.Stdout, os.Stderr, cfg).Run(&linerReader{ln})
}

// linerReader maps an aborted prompt to end of input.
type linerReader struct {
	*liner.State
}

func (l *linerReader) Prompt(prompt string) (string, error) {
	line, err := l.State.Prompt(prompt)
	if err == liner.ErrPromptAborted {
		return "", io.EOF
	}
	return line, err
}

func expandHome(path string) string {
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, rest)
		}
	}
	return path
}
