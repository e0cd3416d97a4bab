package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/dshills/commitmark/internal/document"
	"github.com/dshills/commitmark/internal/generate"
	"github.com/dshills/commitmark/internal/watch"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Watch a repository and generate on every commit",
	Long: `Watch monitors a repository's .git directory and runs the generator
each time git creates COMMIT_EDITMSG, which happens just before it
opens your editor. The suggestion streams into the file while the
editor shows it.

Requires auto = true (the default); set auto = false in the config
file or COMMITMARK_AUTO=false to disable automatic generation.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if !cfg.Auto {
		return errors.New("automatic generation is disabled (auto = false)")
	}

	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}
	gitDir := filepath.Join(dir, ".git")

	g := generate.New(cfg)
	debugObserver(cfg, g.Notifier())
	defer g.Supervisor().Shutdown(shutdownTimeout)

	w, err := watch.New(gitDir, func(path string) {
		doc, err := document.Open(path)
		if err != nil {
			return
		}
		g.Generate(doc).Wait()
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("watching %s\n", gitDir)
	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
