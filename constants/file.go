package constants

import "strings"

// FileFormat is stored on parse jobs.
type FileFormat string

const (
	FormatPDF FileFormat = "PDF"
	FormatTXT FileFormat = "TXT"
)

// AllowedExtensions holds the default quote file extensions for ingestion.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
	"txt": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// MapExtToFormat returns the stored format for an extension.
func MapExtToFormat(ext string) (FileFormat, bool) {
	switch NormalizeExt(ext) {
	case "pdf":
		return FormatPDF, true
	case "txt", "text":
		return FormatTXT, true
	}
	return "", false
}
