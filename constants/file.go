package constants

import "strings"

// FileFormat is the format of a material and of its adapted copies.
type FileFormat string

const (
	PDF  FileFormat = "pdf"
	DOCX FileFormat = "docx"
)

// MaxMaterialSize is the upload limit for a single material.
const MaxMaterialSize = 10 * 1024 * 1024

const (
	ContentTypePDF  = "application/pdf"
	ContentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat maps a normalized extension to a FileFormat; "" if unsupported.
func MapExtToFormat(ext string) FileFormat {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "docx":
		return DOCX
	default:
		return ""
	}
}

// MapContentTypeToFormat maps an upload mime type to a FileFormat; "" if unsupported.
func MapContentTypeToFormat(ct string) FileFormat {
	switch strings.ToLower(strings.TrimSpace(ct)) {
	case ContentTypePDF:
		return PDF
	case ContentTypeDOCX:
		return DOCX
	default:
		return ""
	}
}

// ContentType returns the mime type written to object storage for a format.
func (f FileFormat) ContentType() string {
	switch f {
	case PDF:
		return ContentTypePDF
	case DOCX:
		return ContentTypeDOCX
	default:
		return "application/octet-stream"
	}
}

// Valid reports whether f is one of the supported formats.
func (f FileFormat) Valid() bool {
	return f == PDF || f == DOCX
}
