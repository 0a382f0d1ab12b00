// Package resume turns a résumé file into plain text.
package resume

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ResumeError is shown to the user; the interview cannot start until a
// résumé extracts cleanly.
type ResumeError struct {
	Path string
	Err  error
}

func (e *ResumeError) Error() string {
	return fmt.Sprintf("error processing resume %s: %v", e.Path, e.Err)
}

func (e *ResumeError) Unwrap() error { return e.Err }

var (
	ErrEmpty       = errors.New("no text content found")
	ErrUnsupported = errors.New("unsupported file type")
)

// Extract returns the text of a .pdf, .txt or .md résumé.
func Extract(path string) (string, error) {
	var (
		text string
		err  error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		text, err = extractPDF(path)
	case ".txt", ".md", ".markdown", "":
		text, err = extractPlain(path)
	default:
		err = fmt.Errorf("%w %q", ErrUnsupported, filepath.Ext(path))
	}
	if err != nil {
		return "", &ResumeError{Path: path, Err: err}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", &ResumeError{Path: path, Err: ErrEmpty}
	}

	return text, nil
}

func extractPlain(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func extractPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}

		b.WriteString(text)
		b.WriteString("\n")
	}

	return b.String(), nil
}
