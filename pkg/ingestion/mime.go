package ingestion

import (
	"path/filepath"
	"strings"
)

var mimeByExtension = map[string]string{
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".doc":  "application/msword",
	".pptx": "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".html": "text/html",
	".htm":  "text/html",
	".md":   "text/markdown",
	".txt":  "text/plain",
	".csv":  "text/csv",
}

// DetectMimeType maps a filename extension to a content type, defaulting to
// application/octet-stream for unknown extensions.
func DetectMimeType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if mime, ok := mimeByExtension[ext]; ok {
		return mime
	}
	return "application/octet-stream"
}

// SupportedExtensions lists the upload formats the processor accepts.
func SupportedExtensions() []string {
	return []string{".pdf", ".docx", ".doc", ".pptx", ".xlsx", ".html", ".htm", ".md", ".txt", ".csv"}
}

// IsSupportedExtension reports whether the filename has an accepted extension.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	_, known := mimeByExtension[ext]
	return known
}
