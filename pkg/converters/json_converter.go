package converters

import (
	"fmt"
	"strings"

	"github.com/hyperon-hyeon/Graphear/internal/models"
)

const previewRunes = 40

// QuestionSummary is one row of a document's question listing.
type QuestionSummary struct {
	Number   int    `json:"number"`
	Title    string `json:"title"`
	Preview  string `json:"preview"`
	GlobalID string `json:"global_id"`
	Page     int    `json:"page"`
}

// QuestionList is the listing view of a stored ConversionResult.
type QuestionList struct {
	PdfID     string            `json:"pdf_id"`
	Count     int               `json:"count"`
	Questions []QuestionSummary `json:"questions"`
}

// QuestionDetail is the full view of one question, addressed by its 1-based position.
type QuestionDetail struct {
	Number   int      `json:"number"`
	Title    string   `json:"title"`
	Text     string   `json:"text"`
	Choices  []string `json:"choices"`
	GlobalID string   `json:"global_id"`
	Page     int      `json:"page"`
	AudioURL string   `json:"audio_url"`
}

// QuestionConverter turns stored results into listing and detail views.
type QuestionConverter struct {
	baseURL string
}

// NewQuestionConverter builds audio links under baseURL; an empty base yields relative links.
func NewQuestionConverter(baseURL string) *QuestionConverter {
	return &QuestionConverter{baseURL: strings.TrimRight(baseURL, "/")}
}

func Title(number int) string {
	return fmt.Sprintf("%d번 문제", number)
}

// Preview returns the first 40 characters of text.
func Preview(text string) string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) > previewRunes {
		runes = runes[:previewRunes]
	}
	return string(runes)
}

func (c *QuestionConverter) ToList(pdfID string, result *models.ConversionResult) *QuestionList {
	list := &QuestionList{
		PdfID:     pdfID,
		Questions: make([]QuestionSummary, 0, len(result.Questions)),
	}
	for i, q := range result.Questions {
		list.Questions = append(list.Questions, QuestionSummary{
			Number:   i + 1,
			Title:    Title(i + 1),
			Preview:  Preview(q.Body),
			GlobalID: q.GlobalID,
			Page:     q.Page,
		})
	}
	list.Count = len(list.Questions)
	return list
}

// ToDetail returns the question at 1-based position number, or an error wrapping
// models.ErrNotFound when the position is out of range.
func (c *QuestionConverter) ToDetail(pdfID string, result *models.ConversionResult, number int) (*QuestionDetail, error) {
	q, err := At(result, number)
	if err != nil {
		return nil, err
	}
	choices := q.Choices
	if choices == nil {
		choices = []string{}
	}
	return &QuestionDetail{
		Number:   number,
		Title:    Title(number),
		Text:     q.Body,
		Choices:  choices,
		GlobalID: q.GlobalID,
		Page:     q.Page,
		AudioURL: c.AudioURL(pdfID, number),
	}, nil
}

func (c *QuestionConverter) AudioURL(pdfID string, number int) string {
	return fmt.Sprintf("%s/api/v1/documents/%s/questions/%d/audio", c.baseURL, pdfID, number)
}

// At returns the question at 1-based position number.
func At(result *models.ConversionResult, number int) (models.Question, error) {
	if number < 1 || number > len(result.Questions) {
		return models.Question{}, fmt.Errorf("%w: question %d (document has %d)", models.ErrNotFound, number, len(result.Questions))
	}
	return result.Questions[number-1], nil
}
