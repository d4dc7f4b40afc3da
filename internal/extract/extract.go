package extract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

var ErrNotPDF = errors.New("not a pdf document")

// Text pulls plain text out of an in-memory PDF. Statement parsers work on
// this text line by line. Non-breaking spaces are normalized to plain spaces
// because the bank layouts use them inconsistently.
func Text(data []byte) (string, error) {
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		return "", ErrNotPDF
	}
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	text := strings.ReplaceAll(buf.String(), " ", " ")
	if strings.TrimSpace(text) == "" {
		return "", errors.New("pdf contains no extractable text")
	}
	return text, nil
}
