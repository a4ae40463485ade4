package extract

import (
	"fmt"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"

	"github.com/joseph-ayodele/doc-extractor/constants"
)

// DetectMediaType returns the content-sniffed media type of data without parameters.
func DetectMediaType(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	mt := mimetype.Detect(data)
	for m := mt; m != nil; m = m.Parent() {
		if constants.MapMediaTypeToFormat(m.String()) != "" {
			return m.String()
		}
	}
	return mt.String()
}

// ResolveMediaType picks the media type used for dispatch.
//
// The declared type wins when it is supported and agrees with the content. When
// the content is recognisably a different supported format the sniffed type is
// used and a warning recorded. With no declared type, the extension and then the
// content decide. A declared type outside the supported set is returned as is so
// the caller can reject it.
func ResolveMediaType(doc Document) (string, []string) {
	declared := doc.MediaType
	if declared == "" || declared == "application/octet-stream" {
		declared = constants.MediaTypeForExt(filepath.Ext(doc.Name))
	}
	sniffed := DetectMediaType(doc.Data)
	sniffedFormat := constants.MapMediaTypeToFormat(sniffed)

	if declared == "" {
		return sniffed, nil
	}
	declaredFormat := constants.MapMediaTypeToFormat(declared)
	if declaredFormat == "" {
		return declared, nil
	}
	if sniffedFormat != "" && sniffedFormat != declaredFormat {
		return sniffed, []string{fmt.Sprintf("declared media type %s but content is %s", declared, sniffed)}
	}
	return declared, nil
}
