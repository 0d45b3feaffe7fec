package constants

import "strings"

// AllowedExtensions holds the allowed file extensions for contract ingestion.
// Contracts arrive as PDFs; plain text is accepted for local testing.
var AllowedExtensions = map[string]struct{}{
	"pdf": {},
	"txt": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
