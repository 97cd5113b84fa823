package speech

import (
	"context"
	"strings"
)

// Synthesizer turns text into MP3 audio.
type Synthesizer interface {
	Name() string
	// Synthesize fails with models.ErrInvalidInput for blank text and with
	// models.ErrExternalService when the engine cannot be reached.
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// pause is read aloud as a short silence between lines.
const pause = " . . . . . . . . . . "

// PrepareText flattens text for synthesis. Line breaks become spoken pauses when
// pauseOnBreak is set and plain spaces otherwise; blank lines are dropped.
func PrepareText(text string, pauseOnBreak bool) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	sep := " "
	if pauseOnBreak {
		sep = pause
	}
	return strings.Join(kept, sep)
}

// QuestionText is what gets read for a question: the body, then each choice on its own line.
func QuestionText(body string, choices []string) string {
	parts := make([]string, 0, 1+len(choices))
	if b := strings.TrimSpace(body); b != "" {
		parts = append(parts, b)
	}
	for _, c := range choices {
		if c = strings.TrimSpace(c); c != "" {
			parts = append(parts, c)
		}
	}
	return strings.Join(parts, "\n")
}
