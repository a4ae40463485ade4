package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/doc-extractor/constants"
)

func TestDetectMediaType(t *testing.T) {
	assert.Equal(t, constants.MediaTypePNG, DetectMediaType(buildPNG(t)))
	assert.Equal(t, constants.MediaTypePDF, DetectMediaType(buildPDF(t, "x")))
	assert.Equal(t, "", DetectMediaType(nil))
}

func TestResolveMediaType(t *testing.T) {
	pdf := buildPDF(t, "x")

	mt, warns := ResolveMediaType(Document{Name: "a.pdf", Data: pdf})
	assert.Equal(t, constants.MediaTypePDF, mt)
	assert.Empty(t, warns)

	mt, _ = ResolveMediaType(Document{Name: "upload", MediaType: "application/octet-stream", Data: pdf})
	assert.Equal(t, constants.MediaTypePDF, mt)

	mt, _ = ResolveMediaType(Document{Name: "a.gif", MediaType: "image/gif", Data: []byte("GIF89a")})
	assert.Equal(t, "image/gif", mt)

	mt, warns = ResolveMediaType(Document{Name: "a.docx", MediaType: constants.MediaTypeDOCX, Data: pdf})
	assert.Equal(t, constants.MediaTypePDF, mt)
	assert.Len(t, warns, 1)
}
