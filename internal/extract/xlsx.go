package extract

import (
	"bytes"
	"log"
	"strings"

	"github.com/xuri/excelize/v2"
)

// xlsxText reads every non-empty cell of every sheet, one row per line
func xlsxText(data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", err
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("Warning: failed to close workbook: %v", err)
		}
	}()

	var b strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", err
		}
		for _, row := range rows {
			var cells []string
			for _, cell := range row {
				if cell = strings.TrimSpace(cell); cell != "" {
					cells = append(cells, cell)
				}
			}
			if len(cells) > 0 {
				b.WriteString(strings.Join(cells, " "))
				b.WriteString("\n")
			}
		}
	}
	return strings.TrimSpace(b.String()), nil
}
