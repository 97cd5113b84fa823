package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/hyperon-hyeon/Graphear/config"
	"github.com/hyperon-hyeon/Graphear/pkg/logger"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "graphear",
	Short: "Turn math exam PDFs into screen-reader friendly questions",
	Long: `graphear converts a math exam PDF into structured questions with speakable
math, splits flat exam text into questions, and reads text aloud, all without
running the HTTP server.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log to stderr at debug level")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

func newLogger() (logger.Logger, error) {
	if !verbose {
		return logger.NewNop(), nil
	}
	return logger.NewLogger(
		logger.WithLevel("debug"),
		logger.WithEncoding("console"),
		logger.WithOutputPaths([]string{"stderr"}),
	)
}

// openOutput returns stdout for "" or "-".
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
