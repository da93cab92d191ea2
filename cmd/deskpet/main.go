package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/1broseidon/deskpet/internal/config"
)

var (
	configPath string
	petOrdinal int
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "deskpet",
		Short:         "a desktop pet that walks on your windows",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: ~/.config/deskpet/config.yaml)")

	rootCmd.AddCommand(
		newRunCmd(),
		newSimulateCmd(),
		newPeersCmd(),
		newConfigCmd(),
		newMCPCmd(),
	)
	rootCmd.AddCommand(newControlCmds()...)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig loads the config named by --config, or the default file.
func loadConfig() (*config.LoadResult, error) {
	if configPath == "" {
		return config.Load()
	}
	return config.LoadFromPath(configPath)
}

// newLogger builds the process logger: human-readable text when stderr is a
// terminal, JSON lines otherwise.
func newLogger(w io.Writer, level slog.Leveler) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}
