package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dshills/commitmark/internal/document"
	"github.com/dshills/commitmark/internal/generate"
	"github.com/spf13/cobra"
)

// shutdownTimeout bounds how long a generator child gets between
// SIGTERM and SIGKILL on exit.
const shutdownTimeout = 3 * time.Second

var generateCmd = &cobra.Command{
	Use:   "generate [file]",
	Short: "Generate a suggestion into a commit-message file",
	Long: `Generate runs the generator once and streams its suggestion into the
given commit-message file (default: .git/COMMIT_EDITMSG), rewriting the
file as chunks arrive so an editor watching it sees the suggestion grow.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	path := commitMessagePath(args)
	doc, err := document.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}

	g := generate.New(cfg)
	debugObserver(cfg, g.Notifier())
	defer g.Supervisor().Shutdown(shutdownTimeout)

	sess := g.Generate(doc)

	// Ctrl-C cancels the run; finalization still happens in-document.
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(signals)

	select {
	case <-sess.Done():
	case <-signals:
		_ = sess.Cancel()
		sess.Wait()
	}

	return nil
}

// commitMessagePath resolves the target file: the positional argument
// if given, otherwise the repository's COMMIT_EDITMSG.
func commitMessagePath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return filepath.Join(".git", "COMMIT_EDITMSG")
}
