package domain

import (
	"path/filepath"
	"slices"
	"strings"
)

// Format is the closed set of file formats the loaders dispatch on.
type Format int

// Supported formats.
const (
	FormatUnknown Format = iota
	FormatPDF
	FormatDOCX
	FormatPPTX
	FormatPPT
	FormatXLSX
	FormatCSV
	FormatImage
)

// extensionFormats is the allow-list. Every extension not listed here is ignored.
var extensionFormats = map[string]Format{
	".pdf":  FormatPDF,
	".docx": FormatDOCX,
	".pptx": FormatPPTX,
	".ppt":  FormatPPT,
	".xlsx": FormatXLSX,
	".csv":  FormatCSV,
	".jpg":  FormatImage,
	".jpeg": FormatImage,
	".png":  FormatImage,
	".gif":  FormatImage,
	".webp": FormatImage,
}

// FormatForExtension maps a file extension (with or without the dot, any case)
// to its format.
func FormatForExtension(ext string) (Format, bool) {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	f, ok := extensionFormats[ext]
	return f, ok
}

// FormatForPath maps a file path to its format by extension.
func FormatForPath(path string) (Format, bool) {
	return FormatForExtension(filepath.Ext(path))
}

// AbsPath returns the absolute, cleaned form of path. It is the source
// identity of everything loaded from the file, so "notes.pdf" and
// "./notes.pdf" resolve to the same value.
func AbsPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return abs
}

// IsSupportedPath reports whether path has an allow-listed extension.
func IsSupportedPath(path string) bool {
	_, ok := FormatForPath(path)
	return ok
}

// SupportedExtensions returns the allow-listed extensions, sorted.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(extensionFormats))
	for ext := range extensionFormats {
		exts = append(exts, ext)
	}
	slices.Sort(exts)
	return exts
}

// AllFormats returns every supported format.
func AllFormats() []Format {
	return []Format{FormatPDF, FormatDOCX, FormatPPTX, FormatPPT, FormatXLSX, FormatCSV, FormatImage}
}

// Extensions returns the extensions mapped to this format, sorted.
func (f Format) Extensions() []string {
	var exts []string
	for ext, ef := range extensionFormats {
		if ef == f {
			exts = append(exts, ext)
		}
	}
	slices.Sort(exts)
	return exts
}

// IsTabular reports whether the format goes through the tabular processor.
func (f Format) IsTabular() bool {
	return f == FormatXLSX || f == FormatCSV
}

// String returns the string representation.
func (f Format) String() string {
	switch f {
	case FormatPDF:
		return "pdf"
	case FormatDOCX:
		return "docx"
	case FormatPPTX:
		return "pptx"
	case FormatPPT:
		return "ppt"
	case FormatXLSX:
		return "xlsx"
	case FormatCSV:
		return "csv"
	case FormatImage:
		return "image"
	default:
		return "unknown"
	}
}
