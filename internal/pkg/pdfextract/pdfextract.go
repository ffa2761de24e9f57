package pdfextract

import (
	"bytes"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

// ExtractText reads all of r and extracts plain text from the PDF.
// Returns an empty string and nil error if the PDF has no extractable text.
func ExtractText(r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if len(b) == 0 {
		return "", nil
	}
	pdfReader, err := pdf.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return "", err
	}
	plainReader, err := pdfReader.GetPlainText()
	if err != nil {
		return "", err
	}
	out, err := io.ReadAll(plainReader)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// ExtractPreview extracts text and condenses it to a single line of at
// most maxRunes runes, suitable for list views.
func ExtractPreview(r io.Reader, maxRunes int) (string, error) {
	text, err := ExtractText(r)
	if err != nil {
		return "", err
	}
	text = strings.Join(strings.Fields(text), " ")
	if maxRunes > 0 {
		if runes := []rune(text); len(runes) > maxRunes {
			text = string(runes[:maxRunes])
		}
	}
	return text, nil
}
