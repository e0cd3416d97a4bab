// Package cmd implements the commitmark command tree.
package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/dshills/commitmark/internal/config"
	"github.com/dshills/commitmark/internal/trace"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "commitmark [file]",
	Short: "Stream commit-message suggestions into the message you are editing",
	Long: `Commitmark runs llm-commit-msg against the repository and streams its
suggestion directly into the commit-message file while you edit it. A
marker line shows where the suggestion is landing; it disappears when
the run completes.

Running commitmark with no subcommand generates once against the given
file (default: .git/COMMIT_EDITMSG).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

var (
	flagConfig string
	flagBin    string
	flagArgs   []string
	flagDebug  bool
	flagAuto   bool
)

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagConfig, "config", "c", "", "config file (default is "+defaultPathHint()+")")
	pf.StringVar(&flagBin, "bin", "", "generator binary to run (default "+config.DefaultBin+")")
	pf.StringArrayVar(&flagArgs, "arg", nil, "extra argument passed to the generator (repeatable)")
	pf.BoolVar(&flagDebug, "debug", false, "log run events to stderr")
	pf.BoolVar(&flagAuto, "auto", true, "allow automatic generation triggers")
}

func defaultPathHint() string {
	if path := config.DefaultPath(); path != "" {
		return path
	}
	return "$XDG_CONFIG_HOME/commitmark/config.toml"
}

// resolveConfig folds the configuration sources in precedence order:
// defaults, config file, environment, flags. Only flags the user
// actually set participate in the overlay.
func resolveConfig(cmd *cobra.Command) (config.Config, error) {
	path := flagConfig
	if path == "" {
		path = config.DefaultPath()
	}

	fileOverlay, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config: %w", err)
	}

	var flags config.Overlay
	if cmd.Flags().Changed("bin") {
		flags.Bin = &flagBin
	}
	if cmd.Flags().Changed("arg") {
		flags.Args = flagArgs
	}
	if cmd.Flags().Changed("debug") {
		flags.Debug = &flagDebug
	}
	if cmd.Flags().Changed("auto") {
		flags.Auto = &flagAuto
	}

	return config.Resolve(fileOverlay, config.FromEnv(), flags), nil
}

// debugObserver logs every trace event to stderr when --debug is set.
func debugObserver(cfg config.Config, notifier *trace.Notifier) {
	if !cfg.Debug {
		return
	}
	logger := log.New(os.Stderr, "commitmark: ", log.Ltime|log.Lmicroseconds)
	notifier.Subscribe(func(e trace.Event) {
		if e.RunID != "" {
			logger.Printf("%s run=%s %s", e.Type, e.RunID, e.Detail)
			return
		}
		logger.Printf("%s %s", e.Type, e.Detail)
	})
}
