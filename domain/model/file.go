package model

import (
	"path/filepath"
	"strings"
)

// FileType represents supported file types
type FileType int

const (
	// FileTypeUnsupported represents unsupported file type
	FileTypeUnsupported FileType = iota
	// FileTypeXLSX represents an Office Open XML workbook
	FileTypeXLSX
	// FileTypeXLSM represents a macro-enabled workbook
	FileTypeXLSM
	// FileTypeXLS represents a legacy binary workbook
	FileTypeXLS
	// FileTypeSQLite represents a SQLite database file
	FileTypeSQLite
)

// File extensions
const (
	// ExtXLSX is the workbook extension
	ExtXLSX = ".xlsx"
	// ExtXLSM is the macro-enabled workbook extension
	ExtXLSM = ".xlsm"
	// ExtXLS is the legacy workbook extension
	ExtXLS = ".xls"
	// ExtDB is the default database extension
	ExtDB = ".db"
	// ExtSQLite is an alternative database extension
	ExtSQLite = ".sqlite"
	// ExtSQLite3 is an alternative database extension
	ExtSQLite3 = ".sqlite3"
	// ExtGZ is the gzip compression extension
	ExtGZ = ".gz"
	// ExtBZ2 is the bzip2 compression extension
	ExtBZ2 = ".bz2"
	// ExtXZ is the xz compression extension
	ExtXZ = ".xz"
	// ExtZSTD is the zstd compression extension
	ExtZSTD = ".zst"
)

// CompressionType represents the compression type
type CompressionType int

const (
	// CompressionNone represents no compression
	CompressionNone CompressionType = iota
	// CompressionGZ represents gzip compression
	CompressionGZ
	// CompressionBZ2 represents bzip2 compression
	CompressionBZ2
	// CompressionXZ represents xz compression
	CompressionXZ
	// CompressionZSTD represents zstd compression
	CompressionZSTD
)

// String returns the string representation of CompressionType
func (c CompressionType) String() string {
	switch c {
	case CompressionGZ:
		return "gz"
	case CompressionBZ2:
		return "bz2"
	case CompressionXZ:
		return "xz"
	case CompressionZSTD:
		return "zstd"
	default:
		return "none"
	}
}

// Extension returns the file extension for the compression type
func (c CompressionType) Extension() string {
	switch c {
	case CompressionGZ:
		return ExtGZ
	case CompressionBZ2:
		return ExtBZ2
	case CompressionXZ:
		return ExtXZ
	case CompressionZSTD:
		return ExtZSTD
	default:
		return ""
	}
}

var compressionTypes = []CompressionType{CompressionGZ, CompressionBZ2, CompressionXZ, CompressionZSTD}

// File is a source or destination path classified by extension.
type File struct {
	path        string
	fileType    FileType
	compression CompressionType
}

// NewFile creates a new File
func NewFile(path string) *File {
	compression, base := splitCompression(path)
	return &File{
		path:        path,
		fileType:    detectFileType(base),
		compression: compression,
	}
}

// Path returns file path
func (f *File) Path() string {
	return f.path
}

// Type returns file type
func (f *File) Type() FileType {
	return f.fileType
}

// Compression returns the compression wrapping the file.
func (f *File) Compression() CompressionType {
	return f.compression
}

// IsCompressed returns true if file is compressed
func (f *File) IsCompressed() bool {
	return f.compression != CompressionNone
}

// IsWorkbook reports whether the file is a spreadsheet workbook.
func (f *File) IsWorkbook() bool {
	switch f.fileType {
	case FileTypeXLSX, FileTypeXLSM, FileTypeXLS:
		return true
	default:
		return false
	}
}

// IsDatabase reports whether the file has a recognized database extension.
func (f *File) IsDatabase() bool {
	return f.fileType == FileTypeSQLite
}

// Stem returns the base name without workbook, database or compression
// extensions.
func (f *File) Stem() string {
	_, base := splitCompression(filepath.Base(f.path))
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func splitCompression(path string) (CompressionType, string) {
	lower := strings.ToLower(path)
	for _, c := range compressionTypes {
		if strings.HasSuffix(lower, c.Extension()) {
			return c, path[:len(path)-len(c.Extension())]
		}
	}
	return CompressionNone, path
}

// detectFileType detects file type from extension
func detectFileType(path string) FileType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ExtXLSX:
		return FileTypeXLSX
	case ExtXLSM:
		return FileTypeXLSM
	case ExtXLS:
		return FileTypeXLS
	case ExtDB, ExtSQLite, ExtSQLite3:
		return FileTypeSQLite
	default:
		return FileTypeUnsupported
	}
}

// WithDefaultExtension appends ext to name when name has no extension.
func WithDefaultExtension(name, ext string) string {
	if filepath.Ext(name) == "" {
		return name + ext
	}
	return name
}
