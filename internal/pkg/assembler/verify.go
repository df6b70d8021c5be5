package assembler

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// CountPages parses a serialized PDF and returns its page count.
func CountPages(pdf []byte) (int, error) {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	n, err := api.PageCount(bytes.NewReader(pdf), conf)
	if err != nil {
		return 0, fmt.Errorf("failed to read page count: %w", err)
	}
	return n, nil
}

func verifyPageCount(pdf []byte, want int) error {
	got, err := CountPages(pdf)
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("%w: document has %d pages, expected %d", ErrPageCountMismatch, got, want)
	}
	return nil
}
