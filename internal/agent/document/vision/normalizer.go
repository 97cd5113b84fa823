package vision

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hyperon-hyeon/Graphear/internal/agent/document"
	"github.com/hyperon-hyeon/Graphear/internal/models"
)

// Normalizer turns raw model question objects into Questions. It carries the
// running id counter and the set of issued global ids, so one Normalizer serves
// exactly one conversion run.
type Normalizer struct {
	counter int
	ids     document.GlobalIDs
}

func NewNormalizer() *Normalizer {
	return &Normalizer{counter: 1, ids: document.GlobalIDs{}}
}

// Normalize maps the questions of one page, preserving their order. The page
// number comes from the caller; whatever page the model claims is ignored.
func (n *Normalizer) Normalize(page int, raw []models.RawQuestion) []models.Question {
	out := make([]models.Question, 0, len(raw))
	for _, q := range raw {
		id := questionID(q["id"], n.counter)
		n.counter++

		out = append(out, models.Question{
			ID:       id,
			GlobalID: n.ids.Issue(page, id),
			Page:     page,
			Body:     stringValue(q["body"]),
			Choices:  choices(q["choices"]),
		})
	}
	return out
}

func questionID(v any, fallback int) string {
	switch id := v.(type) {
	case string:
		if strings.TrimSpace(id) != "" {
			return strings.TrimSpace(id)
		}
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	}
	return strconv.Itoa(fallback)
}

func stringValue(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(s)
	}
}

// choices never returns nil: a free-response question and a missing field
// both serialize as [].
func choices(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		out = append(out, stringValue(item))
	}
	return out
}
