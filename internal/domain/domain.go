package domain

import "strings"

const (
	PDFExtension = ".pdf"
	PDFMimeType  = "application/pdf"
)

// Document references a file held by Telegram, not its bytes.
type Document struct {
	FileID   string
	FileName string
	MimeType string
	FileSize int64
}

// LooksLikePDF checks the declared name and MIME type only.
func (d Document) LooksLikePDF() bool {
	if !strings.HasSuffix(d.FileName, PDFExtension) {
		return false
	}

	mimeType, _, _ := strings.Cut(d.MimeType, ";")

	return strings.EqualFold(strings.TrimSpace(mimeType), PDFMimeType)
}
