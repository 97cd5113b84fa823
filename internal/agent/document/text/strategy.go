package text

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/hyperon-hyeon/Graphear/internal/agent/document"
	"github.com/hyperon-hyeon/Graphear/internal/models"
	"github.com/hyperon-hyeon/Graphear/pkg/logger"
)

var separatorLine = regexp.MustCompile(`(?m)^===== Page \d+ =====[ \t]*\r?\n?`)

// Strategy extracts questions from the flat text of a document: page texts are
// joined with page separators and cut at question headers.
type Strategy struct {
	source document.TextSource
	logger logger.Logger
}

func NewStrategy(source document.TextSource, log logger.Logger) *Strategy {
	return &Strategy{source: source, logger: log}
}

func (s *Strategy) Name() string {
	return s.source.Name()
}

func (s *Strategy) Extract(ctx context.Context, doc *models.Document, data []byte) (*models.ConversionResult, error) {
	texts, err := s.source.PageTexts(ctx, data)
	if err != nil {
		return nil, err
	}

	result := &models.ConversionResult{
		Meta: models.ConversionMeta{
			Engine:    s.source.Name(),
			PageCount: len(texts),
		},
		Questions: []models.Question{},
	}

	if !hasText(texts) {
		s.logger.Warn("Document has no extractable text",
			logger.String("pdfId", doc.ID),
			logger.Int("pages", len(texts)),
		)
		return result, nil
	}

	joined, starts := JoinPages(texts)
	ids := document.GlobalIDs{}
	for _, seg := range Segment(joined) {
		page := 1
		if seg.Offset >= 0 {
			page = pageAt(starts, seg.Offset)
		}
		id := strconv.Itoa(seg.Number)
		result.Questions = append(result.Questions, models.Question{
			ID:       id,
			GlobalID: ids.Issue(page, id),
			Page:     page,
			Body:     strings.TrimSpace(separatorLine.ReplaceAllString(seg.Body, "")),
			Choices:  []string{},
		})
	}

	s.logger.Info("Text segmented",
		logger.String("pdfId", doc.ID),
		logger.String("source", s.source.Name()),
		logger.Int("questions", len(result.Questions)),
	)
	return result, nil
}

// JoinPages concatenates page texts, each preceded by a "===== Page n =====" line,
// and returns the byte offset at which every page's separator starts.
func JoinPages(texts []string) (string, []int) {
	var sb strings.Builder
	starts := make([]int, 0, len(texts))
	for i, t := range texts {
		starts = append(starts, sb.Len())
		fmt.Fprintf(&sb, "===== Page %d =====\n", i+1)
		sb.WriteString(t)
		if !strings.HasSuffix(t, "\n") {
			sb.WriteByte('\n')
		}
	}
	return sb.String(), starts
}

// pageAt returns the 1-based page whose span contains offset.
func pageAt(starts []int, offset int) int {
	i := sort.Search(len(starts), func(i int) bool { return starts[i] > offset })
	if i == 0 {
		return 1
	}
	return i
}

func hasText(texts []string) bool {
	for _, t := range texts {
		if strings.TrimSpace(t) != "" {
			return true
		}
	}
	return false
}
