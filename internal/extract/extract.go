// Package extract pulls plain text out of uploaded PDF, DOCX and XLSX files.
package extract

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Format is a recognised upload type
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
	FormatXLSX Format = "xlsx"
)

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// MaxUploadSize bounds the size of an accepted upload
const MaxUploadSize = 10 << 20

var (
	ErrUnsupportedFormat = errors.New("unsupported format: upload a .pdf, .docx or .xlsx file")
	ErrFileTooLarge      = errors.New("file is too large")
)

// Detect works out the format from the file extension, falling back to
// the declared content type
func Detect(filename, contentType string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return FormatPDF, nil
	case ".docx":
		return FormatDOCX, nil
	case ".xlsx":
		return FormatXLSX, nil
	}

	mediaType := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	switch mediaType {
	case mimePDF:
		return FormatPDF, nil
	case mimeDOCX:
		return FormatDOCX, nil
	case mimeXLSX:
		return FormatXLSX, nil
	}
	return "", ErrUnsupportedFormat
}

// Text extracts the readable text of an uploaded file
func Text(filename, contentType string, data []byte) (string, error) {
	if len(data) > MaxUploadSize {
		return "", ErrFileTooLarge
	}

	format, err := Detect(filename, contentType)
	if err != nil {
		return "", err
	}

	var text string
	switch format {
	case FormatPDF:
		text, err = pdfText(data)
	case FormatDOCX:
		text, err = docxText(data)
	case FormatXLSX:
		text, err = xlsxText(data)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s file: %w", format, err)
	}
	return text, nil
}
