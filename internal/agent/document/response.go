package document

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/hyperon-hyeon/Graphear/internal/models"
)

// ErrUnparseableResponse marks a model response that is not the expected JSON object.
// It never escapes the pipeline; the page simply contributes no questions.
var ErrUnparseableResponse = errors.New("unparseable model response")

type pagePayload struct {
	Page      any               `json:"page"`
	Questions []json.RawMessage `json:"questions"`
}

// ParsePageResponse parses one model response for page. Surrounding code fences are
// tolerated. The page number claimed by the model is ignored.
func ParsePageResponse(page int, raw string) models.PageResult {
	result := models.PageResult{Page: page, RawResponse: raw}

	body := StripCodeFence(raw)
	var payload pagePayload
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		result.Err = fmt.Errorf("%w: %v", ErrUnparseableResponse, err)
		return result
	}

	questions := make([]models.RawQuestion, 0, len(payload.Questions))
	for _, item := range payload.Questions {
		var q models.RawQuestion
		if err := json.Unmarshal(item, &q); err != nil || q == nil {
			// not an object; the normalizer has nothing to work with
			continue
		}
		questions = append(questions, q)
	}
	result.Questions = questions
	result.RawResponse = ""
	return result
}

// StripCodeFence removes a surrounding ``` or ```json fence, if present.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
