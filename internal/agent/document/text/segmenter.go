package text

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/hyperon-hyeon/Graphear/internal/models"
)

// headerPattern matches a "[문항 N]" marker at the start of a line and captures
// the number and whatever follows on that line.
var headerPattern = regexp.MustCompile(`(?m)^[ \t]*\[문항\s+(\d+)\][ \t]*(.*)$`)

// Segment splits text into questions at "[문항 N]" headers. Text before the
// first header is dropped. Without any header the whole text comes back as a
// single record numbered 0; empty text yields no records.
func Segment(text string) []models.ParsedTextQuestion {
	if text == "" {
		return []models.ParsedTextQuestion{}
	}

	matches := headerPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return []models.ParsedTextQuestion{{
			Number: 0,
			Header: "",
			Body:   strings.TrimSpace(text),
			Offset: -1,
		}}
	}

	out := make([]models.ParsedTextQuestion, 0, len(matches))
	for i, m := range matches {
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}

		number, err := strconv.Atoi(text[m[2]:m[3]])
		if err != nil {
			number = -1
		}

		body := strings.TrimSpace(text[m[1]:end])
		if rest := strings.TrimSpace(text[m[4]:m[5]]); rest != "" {
			body = strings.TrimSpace(rest + "\n" + body)
		}

		out = append(out, models.ParsedTextQuestion{
			Number: number,
			Header: strings.TrimSpace(text[m[0]:m[1]]),
			Body:   body,
			Offset: m[0],
		})
	}
	return out
}
