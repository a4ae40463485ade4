package constants

import "strings"

// Input formats accepted by the text extractor.
const (
	IMAGE = "IMAGE"
	PDF   = "PDF"
	DOCX  = "DOCX"
)

// Media types of supported uploads.
const (
	MediaTypePNG  = "image/png"
	MediaTypeJPEG = "image/jpeg"
	MediaTypePDF  = "application/pdf"
	MediaTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// AllowedExtensions holds the file extensions accepted on upload.
var AllowedExtensions = map[string]struct{}{
	"png":  {},
	"jpg":  {},
	"jpeg": {},
	"pdf":  {},
	"docx": {},
}

var extMediaTypes = map[string]string{
	"png":  MediaTypePNG,
	"jpg":  MediaTypeJPEG,
	"jpeg": MediaTypeJPEG,
	"pdf":  MediaTypePDF,
	"docx": MediaTypeDOCX,
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MediaTypeForExt returns the media type registered for ext, or "".
func MediaTypeForExt(ext string) string {
	return extMediaTypes[NormalizeExt(ext)]
}

// MapMediaTypeToFormat strips parameters (e.g. "; charset=") before matching.
func MapMediaTypeToFormat(mediaType string) string {
	mt := strings.ToLower(strings.TrimSpace(mediaType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	switch mt {
	case MediaTypePNG, MediaTypeJPEG, "image/jpg", "image/pjpeg":
		return IMAGE
	case MediaTypePDF:
		return PDF
	case MediaTypeDOCX:
		return DOCX
	default:
		return ""
	}
}

// ExtForMediaType is used to name temp files after their content.
func ExtForMediaType(mediaType string) string {
	switch MapMediaTypeToFormat(mediaType) {
	case PDF:
		return ".pdf"
	case DOCX:
		return ".docx"
	case IMAGE:
		if strings.Contains(strings.ToLower(mediaType), "png") {
			return ".png"
		}
		return ".jpg"
	default:
		return ""
	}
}
