// Парсер .xls: ширину таблицы считаем сами и читаем все ячейки до неё
// (Row.LastCol() у extrame/xls врёт на выгрузках с объединёнными ячейками).
package fileio

import (
	"bytes"
	"errors"
	"io"

	xls "github.com/extrame/xls"
)

const probeMaxCols = 64 // каталогу нужны имя и цена; шире не смотрим

// tableWidth — индекс последней непустой колонки + 1 по всем строкам.
func tableWidth(sheet *xls.WorkSheet) int {
	width := 0
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			continue
		}
		for j := probeMaxCols - 1; j >= width; j-- {
			if normalizeCell(row.Col(j)) != "" {
				width = j + 1
				break
			}
		}
	}
	if width == 0 {
		width = 1
	}
	return width
}

// выгрузки магазинов бывают в utf-8 и latin-1 (испанские названия), реже cp1251
var xlsCharsets = []string{"utf-8", "iso-8859-1", "windows-1251"}

func openXLS(b []byte) (*xls.WorkBook, error) {
	var lastErr error
	for _, ch := range xlsCharsets {
		wb, err := xls.OpenReader(bytes.NewReader(b), ch)
		if err == nil && wb != nil {
			return wb, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errors.New("xls: failed to open workbook")
	}
	return nil, lastErr
}

func readXLS(r io.Reader, headerRow int) ([]map[string]string, error) {
	if headerRow <= 0 {
		return nil, errors.New("headerRow must be 1-based and >= 1")
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	wb, err := openXLS(b)
	if err != nil {
		return nil, err
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, nil
	}

	width := tableWidth(sheet)
	rows := make([][]string, 0, int(sheet.MaxRow)+1)
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		cols := make([]string, width)
		if row != nil {
			for j := 0; j < width; j++ {
				cols[j] = normalizeCell(row.Col(j)) // пустые -> ""
			}
		}
		rows = append(rows, cols)
	}

	h := pickHeader(rows, headerRow)
	return rowsToMaps(rows, h, headerRow), nil
}
