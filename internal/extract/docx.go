package extract

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"baliance.com/gooxml/document"
	"baliance.com/gooxml/schema/soo/wml"

	"github.com/joseph-ayodele/doc-extractor/constants"
	"github.com/joseph-ayodele/doc-extractor/internal/common"
)

// DOCXExtractor reads body paragraphs in document order. Tables, headers,
// footers and embedded images are not read.
type DOCXExtractor struct {
	logger *slog.Logger
}

func NewDOCXExtractor(logger *slog.Logger) *DOCXExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &DOCXExtractor{logger: logger}
}

func (d *DOCXExtractor) Extract(ctx context.Context, doc Document) (TextExtractionResult, error) {
	res := TextExtractionResult{
		SourceType: constants.DOCX,
		MediaType:  constants.MediaTypeDOCX,
		Method:     MethodDOCX,
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	paras, err := readParagraphs(doc)
	if err != nil {
		return res, err
	}

	var b strings.Builder
	for _, p := range paras {
		b.WriteString(p)
		b.WriteString("\n")
	}
	res.Text = b.String()
	res.Pages = 1
	d.logger.Debug("extract.docx.done", "paragraphs", len(paras), "text_len", len(res.Text))
	return res, nil
}

func readParagraphs(doc Document) (paras []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			paras = nil
			err = common.NewExtractionError(common.SourceMalformedDocument, "unreadable DOCX", fmt.Errorf("%v", r))
		}
	}()

	var d *document.Document
	switch {
	case len(doc.Data) > 0:
		d, err = document.Read(bytes.NewReader(doc.Data), int64(len(doc.Data)))
	case doc.Path != "":
		d, err = document.Open(doc.Path)
	default:
		return nil, common.NewExtractionError(common.SourceMalformedDocument, "empty DOCX", nil)
	}
	if err != nil {
		return nil, common.NewExtractionError(common.SourceMalformedDocument, "open DOCX", err)
	}

	// Paragraphs also returns table-cell paragraphs after the body ones.
	body := bodyParagraphs(d)
	for _, p := range d.Paragraphs() {
		if _, ok := body[p.X()]; !ok {
			continue
		}
		var line strings.Builder
		for _, r := range p.Runs() {
			line.WriteString(r.Text())
		}
		paras = append(paras, line.String())
	}
	return paras, nil
}

// bodyParagraphs returns the top-level paragraphs of the document body.
func bodyParagraphs(d *document.Document) map[*wml.CT_P]struct{} {
	out := map[*wml.CT_P]struct{}{}
	x := d.X()
	if x == nil || x.Body == nil {
		return out
	}
	for _, ble := range x.Body.EG_BlockLevelElts {
		for _, c := range ble.EG_ContentBlockContent {
			for _, p := range c.P {
				out[p] = struct{}{}
			}
		}
	}
	return out
}
