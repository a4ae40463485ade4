package server

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/doc-extractor/constants"
)

type language struct {
	Code, Label string
}

var formLanguages = []language{
	{"eng", "English"},
	{"deu", "German"},
	{"fra", "French"},
	{"jpn", "Japanese"},
	{"spa", "Spanish"},
	{"hin", "Hindi"},
}

var indexTmpl = template.Must(template.New("index").Parse(`<!doctype html>
<html>
<head><meta charset="utf-8"><title>Document Extractor</title></head>
<body>
<h1>Document Extractor</h1>
<form action="/api/process" method="post" enctype="multipart/form-data">
  <p><label>Document (png, jpg, pdf, docx): <input type="file" name="file" required></label></p>
  <p><label>OCR languages:
    <select name="lang" multiple size="{{len .Languages}}">
    {{- range .Languages}}
      <option value="{{.Code}}"{{if eq .Code "eng"}} selected{{end}}>{{.Label}}</option>
    {{- end}}
    </select></label></p>
  <p><label>Output format:
    <select name="format">
    {{- range .Formats}}
      <option value="{{.}}">{{.}}</option>
    {{- end}}
    </select></label>
  <label>Content:
    <select name="source">
      <option value="structured">structured result</option>
      <option value="extracted">extracted text</option>
    </select></label></p>
  <p><button type="submit">Extract</button></p>
</form>
</body>
</html>
`))

func (s *Server) index(c *gin.Context) {
	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	err := indexTmpl.Execute(c.Writer, struct {
		Languages []language
		Formats   []string
	}{formLanguages, constants.FormatNames()})
	if err != nil {
		s.logger.Error("http.index.render_failed", "error", err)
	}
}
