// Program jcsh is an interactive job-control shell: a line reader, an
// asynchronous signal forwarder, and a single state-owning worker that
// spawns child processes and tracks them through the kernel's own
// process-group and terminal-ownership primitives.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Use-Tusk/jcsh/internal/config"
	"github.com/Use-Tusk/jcsh/internal/historylog"
	"github.com/Use-Tusk/jcsh/internal/shell"
)

var (
	historyFileFlag string
	configPathFlag  string
	debugFlag       bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "jcsh",
		Short: "jcsh is a minimal job-control shell",
		RunE:  run,
	}

	rootCmd.PersistentFlags().StringVar(&historyFileFlag, "history-file", "", "path to the history file (overrides config)")
	rootCmd.PersistentFlags().StringVar(&configPathFlag, "config", config.DefaultPath(), "path to the jcsh JSONC config file")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable structured debug logging on stderr")

	rootCmd.AddCommand(newConfigCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newConfigCmd groups config-file management subcommands under `jcsh
// config`, the way a `cobra` CLI with more than one concern nests them
// rather than flattening everything onto the root command.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "manage jcsh's JSONC config file",
	}
	cmd.AddCommand(newConfigInitCmd())
	return cmd
}

// newConfigInitCmd writes the built-in defaults out to the config path as
// a commented JSONC file, so a user can see and edit them. Fields that are
// empty in the defaults (historyIgnore) are omitted from the written file.
func newConfigInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "write jcsh's default config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPathFlag
			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", path)
				}
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
				return fmt.Errorf("failed to create config directory: %w", err)
			}
			opts := config.FileWriteOptions{HeaderLines: []string{
				"// jcsh config: JSONC (comments and trailing commas allowed).",
				"// Unset fields fall back to the built-in defaults.",
			}}
			if err := config.WriteConfigFile(config.Default(), path, opts); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}
			fmt.Fprintf(os.Stdout, "wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("jcsh requires an interactive controlling terminal on stdin")
	}

	cfg, err := config.Load(configPathFlag)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if historyFileFlag != "" {
		cfg.HistoryFile = historyFileFlag
	}

	log := newLogger(debugFlag)

	hist, err := historylog.Load(cfg.HistoryFile, cfg.HistoryIgnore)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	worker, err := shell.NewWorker(int(os.Stdin.Fd()), log)
	if err != nil {
		return fmt.Errorf("failed to start job control: %w", err)
	}

	workerCh := make(chan shell.WorkerMsg)
	shellCh := make(chan shell.ShellMsg)
	done := make(chan struct{})

	go worker.Run(workerCh, shellCh)

	sigCh := shell.NotifySignals()
	go shell.Forward(sigCh, workerCh, done)

	prompt := shell.Prompt{
		Prefix:   cfg.PromptPrefix,
		OkGlyph:  cfg.OKGlyph,
		ErrGlyph: cfg.ErrGlyph,
	}
	reader := shell.NewReader(os.Stdin, os.Stdout, prompt, hist)

	code := reader.Run(workerCh, shellCh, shell.NotifyInterrupt())
	close(done)
	os.Exit(code)
	return nil
}

func newLogger(debug bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
}
