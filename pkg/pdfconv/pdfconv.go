package pdfconv

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// Converter wraps raster images into single-page PDF documents.
type Converter struct{}

// NewConverter constructs a Converter.
func NewConverter() *Converter {
	return &Converter{}
}

// SupportedExtension reports whether the extension names a raster kind
// this converter accepts. The comparison is case-insensitive and the
// leading dot is optional.
func SupportedExtension(ext string) bool {
	switch normalizeExt(ext) {
	case "JPG", "JPEG", "PNG":
		return true
	}
	return false
}

// Convert embeds the image bytes as a full-bleed page in a new PDF and
// returns the rendered document. The page takes the image's own size and
// orientation, so no rescaling artifacts are introduced.
func (c *Converter) Convert(data []byte, ext string) ([]byte, error) {
	imgType := normalizeExt(ext)
	if !SupportedExtension(imgType) {
		return nil, fmt.Errorf("unsupported image extension %q", ext)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)

	opts := gofpdf.ImageOptions{ImageType: imgType}
	info := pdf.RegisterImageOptionsReader("document", opts, bytes.NewReader(data))
	if pdf.Err() {
		return nil, fmt.Errorf("decode %s image: %v", imgType, pdf.Error())
	}

	width, height := info.Extent()
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("decode %s image: empty dimensions", imgType)
	}

	orientation := "P"
	if width > height {
		orientation = "L"
	}
	pdf.AddPageFormat(orientation, gofpdf.SizeType{Wd: width, Ht: height})
	pdf.ImageOptions("document", 0, 0, width, height, false, opts, 0, "")

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func normalizeExt(ext string) string {
	return strings.ToUpper(strings.TrimPrefix(ext, "."))
}
