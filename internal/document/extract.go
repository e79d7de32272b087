// Package document extracts plain text from uploaded documents so they can
// be submitted as podcast source content.
package document

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Static errors.
var (
	// ErrUnsupportedFileType indicates an upload that is neither .txt nor .docx.
	ErrUnsupportedFileType = errors.New("unsupported file type")
	// ErrMissingDocumentBody indicates a .docx archive without a document body.
	ErrMissingDocumentBody = errors.New("docx archive has no document body")
)

const documentBodyPath = "word/document.xml"

// ExtractText returns the plain text of an uploaded document. The format is
// chosen by file extension: .txt content passes through unchanged, .docx
// archives are unzipped and their document body stripped of markup.
func ExtractText(filename string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt":
		return string(data), nil
	case ".docx":
		return extractDocx(data)
	default:
		return "", fmt.Errorf("%w: %q, please upload .docx or .txt files",
			ErrUnsupportedFileType, filepath.Ext(filename))
	}
}

// extractDocx reads the word/document.xml entry of the archive and collects
// its text runs, one line per paragraph.
func extractDocx(data []byte) (string, error) {
	reader, zipErr := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if zipErr != nil {
		return "", fmt.Errorf("failed to open docx archive: %w", zipErr)
	}

	for _, file := range reader.File {
		if file.Name != documentBodyPath {
			continue
		}

		body, openErr := file.Open()
		if openErr != nil {
			return "", fmt.Errorf("failed to open docx document body: %w", openErr)
		}

		text, parseErr := collectTextRuns(body)
		closeErr := body.Close()

		if parseErr != nil {
			return "", parseErr
		}

		if closeErr != nil {
			return "", fmt.Errorf("failed to close docx document body: %w", closeErr)
		}

		return text, nil
	}

	return "", ErrMissingDocumentBody
}

// collectTextRuns walks the WordprocessingML token stream, keeping the
// character data of <w:t> runs and breaking lines at paragraph ends.
func collectTextRuns(body io.Reader) (string, error) {
	decoder := xml.NewDecoder(body)

	var (
		builder strings.Builder
		inRun   bool
	)

	for {
		token, tokenErr := decoder.Token()
		if errors.Is(tokenErr, io.EOF) {
			break
		}

		if tokenErr != nil {
			return "", fmt.Errorf("failed to parse docx document body: %w", tokenErr)
		}

		switch element := token.(type) {
		case xml.StartElement:
			if element.Name.Local == "t" {
				inRun = true
			}
		case xml.EndElement:
			if element.Name.Local == "t" {
				inRun = false
			}

			if element.Name.Local == "p" {
				builder.WriteString("\n")
			}
		case xml.CharData:
			if inRun {
				builder.Write(element)
			}
		}
	}

	return strings.TrimSpace(builder.String()), nil
}
