package pdf

import (
	"bytes"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// CountPages reports the page count using the lightweight reader, which
// tolerates PDFs that strict validation rejects.
func CountPages(data []byte) (n int, err error) {
	// the reader panics on some truncated cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("failed to open PDF: %v", r)
		}
	}()

	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, reader.Size())
	if err != nil {
		return 0, fmt.Errorf("failed to open PDF: %w", err)
	}
	return pdfReader.NumPage(), nil
}
