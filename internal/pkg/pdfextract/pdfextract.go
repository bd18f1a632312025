package pdfextract

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// ExtractText reads the entire content of r and extracts plain text from the PDF.
// Returns empty string and nil error if the PDF has no extractable text.
func ExtractText(r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return ExtractBytes(b)
}

// ExtractBytes is ExtractText for an already buffered document.
func ExtractBytes(b []byte) (string, error) {
	if len(b) == 0 {
		return "", nil
	}
	pdfReader, err := pdf.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return "", fmt.Errorf("open pdf failed: %w", err)
	}
	plainReader, err := pdfReader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text failed: %w", err)
	}
	out, err := io.ReadAll(plainReader)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// Truncate cuts text to at most max characters (runes). The second return
// value reports whether anything was dropped. max <= 0 disables truncation.
func Truncate(text string, max int) (string, bool) {
	if max <= 0 || utf8.RuneCountInString(text) <= max {
		return text, false
	}
	n := 0
	for i := range text {
		if n == max {
			return text[:i], true
		}
		n++
	}
	return text, false
}
