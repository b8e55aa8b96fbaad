package constants

import (
	"path/filepath"
	"strings"
)

// FileType is the logical kind of an uploaded file.
type FileType string

// Stable values (store these exact strings in DB).
const (
	FileTypeCSV   FileType = "csv"
	FileTypeExcel FileType = "excel"
	FileTypeJSON  FileType = "json"
	FileTypePDF   FileType = "pdf"
	FileTypeImage FileType = "image"
	FileTypeText  FileType = "txt"
)

// extToType maps normalized extensions to logical file types.
// Unknown extensions fall back to txt.
var extToType = map[string]FileType{
	"csv":  FileTypeCSV,
	"xls":  FileTypeExcel,
	"xlsx": FileTypeExcel,
	"json": FileTypeJSON,
	"pdf":  FileTypePDF,
	"jpg":  FileTypeImage,
	"jpeg": FileTypeImage,
	"png":  FileTypeImage,
	"gif":  FileTypeImage,
	"webp": FileTypeImage,
	"txt":  FileTypeText,
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// DetectFileType derives the logical file type from a file name.
func DetectFileType(filename string) FileType {
	ext := NormalizeExt(filepath.Ext(filename))
	if t, ok := extToType[ext]; ok {
		return t
	}
	return FileTypeText
}

// IsStructured reports whether the file type goes through the
// field-mapping flow rather than straight to AI extraction.
func IsStructured(t FileType) bool {
	switch t {
	case FileTypeCSV, FileTypeExcel, FileTypeJSON:
		return true
	}
	return false
}
