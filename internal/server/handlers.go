package server

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/doc-extractor/constants"
	"github.com/joseph-ayodele/doc-extractor/internal/common"
	"github.com/joseph-ayodele/doc-extractor/internal/pipeline"
	"github.com/joseph-ayodele/doc-extractor/internal/render"
)

const maxFilenameLen = 255

var sourceNames = []string{"structured", "extracted", "text"}

type extractResponse struct {
	RequestID        string   `json:"request_id"`
	ExtractedText    string   `json:"extracted_text"`
	StructuredResult string   `json:"structured_result"`
	JSONValid        bool     `json:"json_valid"`
	SchemaIssues     []string `json:"schema_issues,omitempty"`
	Method           string   `json:"method"`
	Pages            int      `json:"pages"`
	Warnings         []string `json:"warnings,omitempty"`
	Provider         string   `json:"provider,omitempty"`
	Model            string   `json:"model,omitempty"`
}

func (s *Server) extract(c *gin.Context) {
	up, err := s.readUpload(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	res, err := s.proc.Run(c.Request.Context(), up)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, extractResponse{
		RequestID:        res.RequestID,
		ExtractedText:    res.Extracted.Content,
		StructuredResult: res.Structured.Content,
		JSONValid:        res.Inspection.ValidJSON,
		SchemaIssues:     res.Inspection.SchemaIssues,
		Method:           string(res.Extraction.Method),
		Pages:            res.Extraction.Pages,
		Warnings:         res.Extraction.Warnings,
		Provider:         res.Provider,
		Model:            res.Model,
	})
}

func (s *Server) process(c *gin.Context) {
	up, err := s.readUpload(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	// The form posts these as fields; API callers use the query string.
	formatName := firstNonEmpty(c.Query("format"), c.PostForm("format"), "json")
	sourceName := firstNonEmpty(c.Query("source"), c.PostForm("source"), "structured")

	v := common.NewValidator().
		Field("format", strings.ToLower(formatName), common.OneOf(append(constants.FormatNames(), "txt")...)).
		Field("source", strings.ToLower(sourceName), common.OneOf(sourceNames...))
	if err := common.ValidateAndReturnError(v); err != nil {
		s.fail(c, err)
		return
	}
	format, err := render.ParseFormat(formatName)
	if err != nil {
		s.fail(c, err)
		return
	}
	stage, _ := constants.ParseStage(strings.ToLower(sourceName))

	res, err := s.proc.Run(c.Request.Context(), up)
	if err != nil {
		s.fail(c, err)
		return
	}
	art, err := s.proc.Render(res, stage, format)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", art.Filename))
	c.Header("X-Request-ID", res.RequestID)
	c.Data(http.StatusOK, art.MediaType, art.Data)
}

// readUpload pulls the "file" part and the optional "lang" values out of the
// multipart body. The body is capped at MaxUploadMB.
func (s *Server) readUpload(c *gin.Context) (pipeline.Upload, error) {
	limit := int64(s.cfg.MaxUploadMB) << 20
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	fh, err := c.FormFile("file")
	if err != nil {
		if isTooLarge(err) {
			return pipeline.Upload{}, err
		}
		return pipeline.Upload{}, fmt.Errorf("%w: file: %v", common.ErrValidation, err)
	}

	langs := splitLanguages(c.PostFormArray("lang"))
	v := common.NewValidator().
		Field("file", fh.Filename, common.Required, func(name string, value interface{}) *common.ValidationError {
			return common.MaxLength(name, value, maxFilenameLen)
		})
	for _, l := range langs {
		v.Field("lang", l, common.LanguageCode)
	}
	if err := common.ValidateAndReturnError(v); err != nil {
		return pipeline.Upload{}, err
	}
	if len(langs) == 0 {
		langs = s.cfg.DefaultLanguages
	}

	data, err := readPart(fh)
	if err != nil {
		return pipeline.Upload{}, err
	}
	return pipeline.Upload{
		Name:      fh.Filename,
		MediaType: fh.Header.Get("Content-Type"),
		Data:      data,
		Languages: langs,
	}, nil
}

func readPart(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return data, nil
}

// splitLanguages accepts repeated values as well as "eng+deu" or "eng,deu".
func splitLanguages(values []string) []string {
	var out []string
	for _, v := range values {
		for _, l := range strings.FieldsFunc(v, func(r rune) bool { return r == '+' || r == ',' || r == ' ' }) {
			out = append(out, strings.ToLower(l))
		}
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
