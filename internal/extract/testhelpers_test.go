package extract

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"sync"
	"testing"

	"baliance.com/gooxml/document"
	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/require"
)

// buildPDF renders one page per entry; an empty entry yields a page with no text.
func buildPDF(t *testing.T, pages ...string) []byte {
	t.Helper()
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetCompression(false)
	pdf.SetFont("Helvetica", "", 12)
	for _, text := range pages {
		pdf.AddPage()
		if text != "" {
			pdf.Cell(120, 10, text)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, pdf.Output(&buf))
	return buf.Bytes()
}

func buildDOCX(t *testing.T, paras ...string) []byte {
	t.Helper()
	doc := document.New()
	for _, p := range paras {
		doc.AddParagraph().AddRun().AddText(p)
	}
	var buf bytes.Buffer
	require.NoError(t, doc.Save(&buf))
	return buf.Bytes()
}

func buildPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		img.SetGray(x, x, color.Gray{Y: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type fakeEngine struct {
	mu    sync.Mutex
	calls int
	langs [][]string
	text  string
	err   error
}

func (f *fakeEngine) Name() string { return "fake" }

func (f *fakeEngine) Recognize(_ context.Context, _ []byte, langs []string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.langs = append(f.langs, langs)
	return f.text, f.err
}

type fakeRasterizer struct {
	pages []int
	err   error
}

func (f *fakeRasterizer) Name() string { return "fake" }

func (f *fakeRasterizer) Rasterize(_ context.Context, _ Document, page int) ([]byte, error) {
	f.pages = append(f.pages, page)
	if f.err != nil {
		return nil, f.err
	}
	return []byte{byte(page)}, nil
}

// recordingRunner emulates pdftoppm by writing <prefix>.png.
type recordingRunner struct {
	name  string
	args  []string
	input []byte
	fail  bool
}

func (r *recordingRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	r.name = name
	r.args = args
	if r.fail {
		return nil, []byte("Syntax Error: Couldn't read xref table"), os.ErrInvalid
	}
	n := len(args)
	r.input, _ = os.ReadFile(args[n-2])
	if err := os.WriteFile(args[n-1]+".png", []byte("rendered"), 0o600); err != nil {
		return nil, nil, err
	}
	return nil, nil, nil
}
