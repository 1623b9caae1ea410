// Package extractortest builds small real PDF documents for tests.
package extractortest

import (
	"bytes"
	"fmt"
)

// BuildPDF writes a minimal PDF with one Helvetica text line per page.
func BuildPDF(pageTexts []string) []byte {
	const (
		catalogObj = 1
		pagesObj   = 2
		fontObj    = 3
		firstObj   = 4
	)

	var objects []string

	objects = append(objects, fmt.Sprintf("<< /Type /Catalog /Pages %d 0 R >>", pagesObj))

	var kids bytes.Buffer
	for i := range pageTexts {
		if i > 0 {
			kids.WriteString(" ")
		}
		fmt.Fprintf(&kids, "%d 0 R", firstObj+2*i)
	}
	objects = append(objects, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids.String(), len(pageTexts)))

	objects = append(objects, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")

	for i, text := range pageTexts {
		pageNum := firstObj + 2*i
		contentNum := pageNum + 1

		objects = append(objects, fmt.Sprintf(
			"<< /Type /Page /Parent %d 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 %d 0 R >> >> /Contents %d 0 R >>",
			pagesObj,
			fontObj,
			contentNum,
		))

		content := fmt.Sprintf("BT /F1 12 Tf 72 712 Td (%s) Tj ET", text)
		objects = append(objects, fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
	}

	var out bytes.Buffer
	out.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = out.Len()
		fmt.Fprintf(&out, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xrefOffset := out.Len()
	fmt.Fprintf(&out, "xref\n0 %d\n", len(objects)+1)
	out.WriteString("0000000000 65535 f \n")
	for _, offset := range offsets {
		fmt.Fprintf(&out, "%010d 00000 n \n", offset)
	}

	fmt.Fprintf(&out, "trailer\n<< /Size %d /Root %d 0 R >>\n", len(objects)+1, catalogObj)
	fmt.Fprintf(&out, "startxref\n%d\n%%%%EOF\n", xrefOffset)

	return out.Bytes()
}

// NumberedPages returns distinct markers "PageMarker01", "PageMarker02", ...
func NumberedPages(n int) []string {
	pages := make([]string, n)
	for i := range pages {
		pages[i] = fmt.Sprintf("PageMarker%02d", i+1)
	}

	return pages
}
