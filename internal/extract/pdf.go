package extract

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"rsc.io/pdf"
)

// pdfText concatenates the text runs of every page. The pdf reader panics
// on some malformed files, so panics are turned into errors.
func pdfText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		writeRuns(&b, page.Content().Text)
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String()), nil
}

// writeRuns joins positioned text runs, starting a new line when the
// baseline moves and a space when there is a horizontal gap
func writeRuns(b *strings.Builder, runs []pdf.Text) {
	for i, t := range runs {
		if i > 0 {
			prev := runs[i-1]
			switch {
			case math.Abs(t.Y-prev.Y) > prev.FontSize/2:
				b.WriteString("\n")
			case t.X-(prev.X+prev.W) > prev.FontSize*0.15:
				b.WriteString(" ")
			}
		}
		b.WriteString(t.S)
	}
}
