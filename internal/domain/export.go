package domain

import (
	"errors"
	"fmt"
	"strings"
)

type ExportFormat string

const (
	FormatVector   ExportFormat = "svg"
	FormatRaster   ExportFormat = "png"
	FormatSnapshot ExportFormat = "json"
	FormatMarkup   ExportFormat = "html"
	FormatDocument ExportFormat = "docx"
)

// Formats lists every supported export format.
var Formats = []ExportFormat{FormatVector, FormatRaster, FormatSnapshot, FormatMarkup, FormatDocument}

type ExportScope string

const (
	ScopeCurrent ExportScope = "current"
	ScopeAll     ExportScope = "all"
)

// Scope returns the page scope a format always covers.
func (f ExportFormat) Scope() ExportScope {
	switch f {
	case FormatVector, FormatRaster:
		return ScopeCurrent
	default:
		return ScopeAll
	}
}

type ExportJob struct {
	Format ExportFormat `json:"format"`
	Scope  ExportScope  `json:"scope"`
}

// ExportResult is a finished export ready to be written or downloaded.
type ExportResult struct {
	Filename string `json:"filename"`
	MIMEType string `json:"mimeType"`
	Data     []byte `json:"-"`
}

var ErrUnknownFormat = errors.New("unknown export format")

// ParseExportFormat accepts a format name ("svg", "png", "json", "html", "docx").
func ParseExportFormat(s string) (ExportFormat, error) {
	f := ExportFormat(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// NewExportJob builds the job for a format with its fixed page scope.
func NewExportJob(f ExportFormat) ExportJob {
	return ExportJob{Format: f, Scope: f.Scope()}
}
