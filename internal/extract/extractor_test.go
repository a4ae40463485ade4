package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/doc-extractor/constants"
	"github.com/joseph-ayodele/doc-extractor/internal/common"
)

func TestExtractorDispatch(t *testing.T) {
	eng := &fakeEngine{text: "Name: John Smith"}
	e := NewExtractor(Config{}, eng, &fakeRasterizer{}, nil)
	ctx := context.Background()

	t.Run("image", func(t *testing.T) {
		res, err := e.Extract(ctx, Document{Name: "id.png", MediaType: constants.MediaTypePNG, Data: buildPNG(t), Languages: []string{"ENG"}})
		require.NoError(t, err)
		assert.Equal(t, "Name: John Smith", res.Text)
		assert.Equal(t, constants.IMAGE, res.SourceType)
		assert.Equal(t, MethodImageOCR, res.Method)
		assert.Equal(t, "eng", res.Language)
		assert.Equal(t, "fake", res.Engine)
	})

	t.Run("pdf", func(t *testing.T) {
		res, err := e.Extract(ctx, Document{Name: "a.pdf", MediaType: constants.MediaTypePDF, Data: buildPDF(t, "Age: 42")})
		require.NoError(t, err)
		assert.Equal(t, "Age: 42\n", res.Text)
	})

	t.Run("docx", func(t *testing.T) {
		res, err := e.Extract(ctx, Document{Name: "a.docx", MediaType: constants.MediaTypeDOCX, Data: buildDOCX(t, "Gender: F")})
		require.NoError(t, err)
		assert.Equal(t, "Gender: F\n", res.Text)
	})
}

func TestExtractorUnsupported(t *testing.T) {
	eng := &fakeEngine{}
	e := NewExtractor(Config{}, eng, nil, nil)

	_, err := e.Extract(context.Background(), Document{Name: "notes.txt", MediaType: "text/plain", Data: []byte("hello")})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrUnsupportedInput)
	assert.Zero(t, eng.calls)
}

func TestExtractorCorruptImage(t *testing.T) {
	eng := &fakeEngine{text: "x"}
	e := NewExtractor(Config{}, eng, nil, nil)

	data := append([]byte("\x89PNG\r\n\x1a\n"), []byte("not really a png")...)
	_, err := e.Extract(context.Background(), Document{Name: "x.png", MediaType: constants.MediaTypePNG, Data: data})
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrExtraction)
	assert.Equal(t, common.SourceMalformedDocument, common.SourceOf(err))
	assert.Zero(t, eng.calls)
}

func TestExtractorMismatchedDeclaredType(t *testing.T) {
	e := NewExtractor(Config{}, &fakeEngine{}, &fakeRasterizer{}, nil)

	res, err := e.Extract(context.Background(), Document{Name: "scan.png", MediaType: constants.MediaTypePNG, Data: buildPDF(t, "Phone: 555-0100")})
	require.NoError(t, err)
	assert.Equal(t, constants.PDF, res.SourceType)
	require.NotEmpty(t, res.Warnings)
	assert.Contains(t, res.Warnings[0], "declared media type image/png")
}
