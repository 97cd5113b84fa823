package image

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/textract"
	"github.com/aws/aws-sdk-go-v2/service/textract/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperon-hyeon/Graphear/internal/agent/document"
	"github.com/hyperon-hyeon/Graphear/internal/models"
	"github.com/hyperon-hyeon/Graphear/pkg/logger"
)

type fakeRasterizer struct {
	pages int
}

func (f fakeRasterizer) Open(data []byte) (document.PageSource, error) {
	if string(data) != "%PDF" {
		return nil, models.ErrDocumentCorrupt
	}
	return fakePages(f), nil
}

type fakePages fakeRasterizer

func (f fakePages) PageCount() int { return f.pages }
func (f fakePages) RenderPage(i int, _ float64) ([]byte, error) {
	return []byte(fmt.Sprintf("page-%d", i+1)), nil
}
func (f fakePages) Close() error { return nil }

type fakeTextract struct {
	fail bool
}

func (f *fakeTextract) DetectDocumentText(_ context.Context, in *textract.DetectDocumentTextInput, _ ...func(*textract.Options)) (*textract.DetectDocumentTextOutput, error) {
	if f.fail {
		return nil, errors.New("AccessDenied")
	}
	name := string(in.Document.Bytes)
	return &textract.DetectDocumentTextOutput{
		Blocks: []types.Block{
			{BlockType: types.BlockTypePage},
			{BlockType: types.BlockTypeLine, Text: aws.String("[문항 1] " + name), Confidence: aws.Float32(99)},
			{BlockType: types.BlockTypeWord, Text: aws.String("word"), Confidence: aws.Float32(99)},
			{BlockType: types.BlockTypeLine, Text: aws.String("smudge"), Confidence: aws.Float32(10)},
			{BlockType: types.BlockTypeLine, Text: aws.String("① 1"), Confidence: aws.Float32(90)},
		},
	}, nil
}

func TestTextractSource_PageTexts(t *testing.T) {
	src := newTextractSource(&fakeTextract{}, fakeRasterizer{pages: 2}, 200, logger.NewNop())

	texts, err := src.PageTexts(context.Background(), []byte("%PDF"))
	require.NoError(t, err)
	assert.Equal(t, []string{"[문항 1] page-1\n① 1", "[문항 1] page-2\n① 1"}, texts)
	assert.Equal(t, "textract", src.Name())
}

func TestTextractSource_Errors(t *testing.T) {
	src := newTextractSource(&fakeTextract{fail: true}, fakeRasterizer{pages: 1}, 200, logger.NewNop())

	_, err := src.PageTexts(context.Background(), []byte("%PDF"))
	assert.ErrorIs(t, err, models.ErrExternalService)

	_, err = src.PageTexts(context.Background(), []byte("nope"))
	assert.ErrorIs(t, err, models.ErrDocumentCorrupt)
}
