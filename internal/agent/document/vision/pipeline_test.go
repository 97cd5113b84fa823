package vision

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperon-hyeon/Graphear/internal/agent/document"
	"github.com/hyperon-hyeon/Graphear/internal/models"
	"github.com/hyperon-hyeon/Graphear/pkg/logger"
)

type fakeRasterizer struct {
	pages     int
	failPage  int // 1-based, 0 for none
	openError error
}

func (f *fakeRasterizer) Open(data []byte) (document.PageSource, error) {
	if f.openError != nil {
		return nil, f.openError
	}
	return &fakePages{f}, nil
}

type fakePages struct{ r *fakeRasterizer }

func (p *fakePages) PageCount() int { return p.r.pages }
func (p *fakePages) RenderPage(i int, dpi float64) ([]byte, error) {
	if i+1 == p.r.failPage {
		return nil, fmt.Errorf("%w: broken xref", models.ErrDocumentCorrupt)
	}
	return []byte(fmt.Sprintf("png:%d@%v", i+1, dpi)), nil
}
func (p *fakePages) Close() error { return nil }

// scriptedClient answers each page with a canned raw response, or a transport failure.
type scriptedClient struct {
	responses map[int]string
	down      map[int]bool
	prompts   []string
	images    [][]byte
}

func (c *scriptedClient) Name() string { return "gemini-2.5-flash" }

func (c *scriptedClient) ExtractPage(ctx context.Context, prompt string, page int, img []byte) models.PageResult {
	c.prompts = append(c.prompts, prompt)
	c.images = append(c.images, img)
	if c.down[page] {
		return models.PageResult{Page: page, Err: fmt.Errorf("%w: 503", models.ErrExternalService)}
	}
	return document.ParsePageResponse(page, c.responses[page])
}

var testDoc = &models.Document{ID: "doc-1"}

func TestPipeline_UnparseablePageIsSkipped(t *testing.T) {
	client := &scriptedClient{responses: map[int]string{
		1: `{"page": 1, "questions": [{"id": "1", "body": "첫 문제", "choices": ["① 1", "② 2"]}]}`,
		2: "죄송합니다. 이 페이지를 읽을 수 없습니다.",
		3: `{"page": 99, "questions": [{"id": "1", "body": "셋째 쪽"}, {"id": "2", "body": "서술형", "choices": []}]}`,
	}}
	log := logger.NewTestLogger()
	p := NewPipeline(&fakeRasterizer{pages: 3}, client, 200, log)

	res, err := p.Extract(context.Background(), testDoc, []byte("%PDF"))
	require.NoError(t, err)

	assert.Equal(t, models.ConversionMeta{Engine: "gemini-2.5-flash", PageCount: 3}, res.Meta)
	require.Len(t, res.Questions, 3)
	assert.Equal(t, "1-1", res.Questions[0].GlobalID)
	assert.Equal(t, []string{"① 1", "② 2"}, res.Questions[0].Choices)
	assert.Equal(t, 3, res.Questions[1].Page)
	assert.Equal(t, "3-1", res.Questions[1].GlobalID)
	assert.Equal(t, "3-2", res.Questions[2].GlobalID)
	assert.Equal(t, []string{}, res.Questions[2].Choices)

	assert.Equal(t, 1, log.Count("WARN"))
	assert.Len(t, client.prompts, 3)
	assert.Equal(t, document.SystemPrompt, client.prompts[0])
	assert.Equal(t, "png:2@200", string(client.images[1]))
}

func TestPipeline_Invariants(t *testing.T) {
	client := &scriptedClient{responses: map[int]string{
		1: `{"questions": [{"id": "1"}, {"id": "1"}, {"body": "no id"}]}`,
		2: `{"questions": [{"id": 1, "body": 3}, {"id": "1-2"}]}`,
	}}
	p := NewPipeline(&fakeRasterizer{pages: 2}, client, 200, logger.NewNop())

	res, err := p.Extract(context.Background(), testDoc, nil)
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, q := range res.Questions {
		assert.False(t, seen[q.GlobalID], "duplicate global id %s", q.GlobalID)
		seen[q.GlobalID] = true
		assert.GreaterOrEqual(t, q.Page, 1)
		assert.LessOrEqual(t, q.Page, res.Meta.PageCount)
		assert.NotNil(t, q.Choices)
	}
	assert.Len(t, res.Questions, 5)
	assert.Equal(t, "3", res.Questions[2].ID)
	assert.Equal(t, "3", res.Questions[3].Body)
}

func TestPipeline_TransportFailures(t *testing.T) {
	t.Run("one page down degrades", func(t *testing.T) {
		client := &scriptedClient{
			responses: map[int]string{2: `{"questions": [{"id": "1", "body": "b"}]}`},
			down:      map[int]bool{1: true},
		}
		p := NewPipeline(&fakeRasterizer{pages: 2}, client, 200, logger.NewNop())

		res, err := p.Extract(context.Background(), testDoc, nil)
		require.NoError(t, err)
		require.Len(t, res.Questions, 1)
		assert.Equal(t, "2-1", res.Questions[0].GlobalID)
	})

	t.Run("every page down fails the run", func(t *testing.T) {
		client := &scriptedClient{down: map[int]bool{1: true, 2: true}}
		p := NewPipeline(&fakeRasterizer{pages: 2}, client, 200, logger.NewNop())

		res, err := p.Extract(context.Background(), testDoc, nil)
		assert.ErrorIs(t, err, models.ErrExternalService)
		assert.Nil(t, res)
	})
}

func TestPipeline_FatalErrors(t *testing.T) {
	client := &scriptedClient{responses: map[int]string{1: `{"questions": []}`}}

	_, err := NewPipeline(&fakeRasterizer{openError: models.ErrDocumentCorrupt}, client, 200, logger.NewNop()).
		Extract(context.Background(), testDoc, nil)
	assert.ErrorIs(t, err, models.ErrDocumentCorrupt)

	res, err := NewPipeline(&fakeRasterizer{pages: 3, failPage: 2}, client, 200, logger.NewNop()).
		Extract(context.Background(), testDoc, nil)
	assert.ErrorIs(t, err, models.ErrDocumentCorrupt)
	assert.Nil(t, res)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewPipeline(&fakeRasterizer{pages: 1}, client, 200, logger.NewNop()).Extract(ctx, testDoc, nil)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestPipeline_EmptyDocument(t *testing.T) {
	p := NewPipeline(&fakeRasterizer{pages: 0}, &scriptedClient{}, 200, logger.NewNop())

	res, err := p.Extract(context.Background(), testDoc, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Meta.PageCount)
	assert.NotNil(t, res.Questions)
	assert.Empty(t, res.Questions)
}
