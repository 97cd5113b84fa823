package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hyperon-hyeon/Graphear/internal/agent"
	"github.com/hyperon-hyeon/Graphear/internal/models"
)

var (
	convertPDFPath    string
	convertOutputPath string
	convertStrategy   string
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Extract questions from an exam PDF",
	Long:  "Run the configured extraction strategy over a local PDF and print the conversion result as JSON.",
	RunE:  runConvert,
}

func init() {
	convertCmd.Flags().StringVarP(&convertPDFPath, "pdf", "p", "", "path to the exam PDF (required)")
	convertCmd.Flags().StringVarP(&convertOutputPath, "output", "o", "", "write the result here instead of stdout")
	convertCmd.Flags().StringVar(&convertStrategy, "strategy", "", "override extraction strategy (vision|text)")
	convertCmd.MarkFlagRequired("pdf")
	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if convertStrategy != "" {
		cfg.Extraction.Strategy = convertStrategy
	}
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	data, err := os.ReadFile(convertPDFPath)
	if err != nil {
		return fmt.Errorf("read pdf: %w", err)
	}

	factory := agent.NewProcessorFactory(cfg, log)
	defer factory.Close()

	extractor, err := factory.NewExtractor(ctx)
	if err != nil {
		return err
	}

	doc := &models.Document{
		ID:         filepath.Base(convertPDFPath),
		Filename:   filepath.Base(convertPDFPath),
		Size:       int64(len(data)),
		StorageKey: convertPDFPath,
	}
	result, err := extractor.Extract(ctx, doc, data)
	if err != nil {
		return fmt.Errorf("extract failed: %w", err)
	}

	out, err := openOutput(convertOutputPath)
	if err != nil {
		return err
	}
	defer out.Close()
	return writeJSON(out, result)
}
