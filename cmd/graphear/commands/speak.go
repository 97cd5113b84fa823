package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/hyperon-hyeon/Graphear/internal/agent"
)

var (
	speakText   string
	speakOutput string
)

var speakCmd = &cobra.Command{
	Use:   "speak",
	Short: "Synthesize text to an MP3 file",
	RunE:  runSpeak,
}

func init() {
	speakCmd.Flags().StringVarP(&speakText, "text", "t", "", "text to read aloud (required)")
	speakCmd.Flags().StringVarP(&speakOutput, "output", "o", "speech.mp3", "output MP3 path")
	speakCmd.MarkFlagRequired("text")
	rootCmd.AddCommand(speakCmd)
}

func runSpeak(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	synth, err := agent.NewProcessorFactory(cfg, log).NewSynthesizer()
	if err != nil {
		return err
	}
	audio, err := synth.Synthesize(cmd.Context(), speakText)
	if err != nil {
		return err
	}
	if err := os.WriteFile(speakOutput, audio, 0644); err != nil {
		return fmt.Errorf("write audio: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d bytes to %s\n", len(audio), speakOutput)
	return nil
}
