package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/hyperon-hyeon/Graphear/internal/agent/document/text"
)

var segmentInput string

var segmentCmd = &cobra.Command{
	Use:   "segment",
	Short: "Split flat exam text into questions by [문항 N] headers",
	RunE:  runSegment,
}

func init() {
	segmentCmd.Flags().StringVarP(&segmentInput, "input", "i", "-", "text file to segment, - for stdin")
	rootCmd.AddCommand(segmentCmd)
}

func runSegment(cmd *cobra.Command, args []string) error {
	var r io.Reader = cmd.InOrStdin()
	if segmentInput != "-" {
		f, err := os.Open(segmentInput)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return writeJSON(cmd.OutOrStdout(), text.Segment(string(data)))
}
