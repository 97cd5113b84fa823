package converters

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperon-hyeon/Graphear/internal/models"
)

func sampleResult() *models.ConversionResult {
	return &models.ConversionResult{
		Meta: models.ConversionMeta{Engine: "gemini-2.5-flash", PageCount: 2},
		Questions: []models.Question{
			{ID: "1", GlobalID: "1-1", Page: 1, Body: strings.Repeat("가", 50), Choices: []string{"① 1", "② 2"}},
			{ID: "2", GlobalID: "2-2", Page: 2, Body: "짧은 문제", Choices: nil},
		},
	}
}

func TestToList(t *testing.T) {
	c := NewQuestionConverter("")
	list := c.ToList("abc", sampleResult())

	assert.Equal(t, "abc", list.PdfID)
	assert.Equal(t, 2, list.Count)
	require.Len(t, list.Questions, 2)
	assert.Equal(t, QuestionSummary{Number: 1, Title: "1번 문제", Preview: strings.Repeat("가", 40), GlobalID: "1-1", Page: 1}, list.Questions[0])
	assert.Equal(t, "짧은 문제", list.Questions[1].Preview)

	empty := c.ToList("abc", &models.ConversionResult{})
	assert.NotNil(t, empty.Questions)
	assert.Zero(t, empty.Count)
}

func TestToDetail(t *testing.T) {
	c := NewQuestionConverter("https://graphear.example/")

	d, err := c.ToDetail("abc", sampleResult(), 2)
	require.NoError(t, err)
	assert.Equal(t, "2번 문제", d.Title)
	assert.Equal(t, "짧은 문제", d.Text)
	assert.Equal(t, []string{}, d.Choices)
	assert.Equal(t, "https://graphear.example/api/v1/documents/abc/questions/2/audio", d.AudioURL)

	_, err = c.ToDetail("abc", sampleResult(), 0)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = c.ToDetail("abc", sampleResult(), 3)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestAudioURL_Relative(t *testing.T) {
	assert.Equal(t, "/api/v1/documents/x/questions/1/audio", NewQuestionConverter("").AudioURL("x", 1))
}
