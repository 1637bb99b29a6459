package fileio

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

var ErrUnsupportedFormat = errors.New("unsupported file format")

// ReadAnyMaps — выберет парсер по расширению и вернёт строки как срез map[header]value.
// headerRow — номер строки заголовков (1-based).
func ReadAnyMaps(r io.Reader, filename string, headerRow int) ([]map[string]string, error) {
	var (
		rows []map[string]string
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".xlsx":
		rows, err = readXLSX(r, headerRow)
	case ".xls":
		rows, err = readXLS(r, headerRow)
	case ".csv":
		rows, err = readCSV(r, headerRow)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "read %s", filename)
	}
	return rows, nil
}

// IsTable — умеет ли ReadAnyMaps читать такой файл.
func IsTable(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xls", ".csv":
		return true
	}
	return false
}

// pickHeader — берёт строку заголовков и подставляет Column N для пустых.
func pickHeader(rows [][]string, headerRow int) []string {
	idx := headerRow - 1
	if idx < 0 || idx >= len(rows) {
		idx = 0
	}
	h := rows[idx]
	out := make([]string, len(h))
	for i, v := range h {
		v = normalizeCell(v)
		if v == "" {
			v = fmt.Sprintf("Column %d", i+1)
		}
		out[i] = v
	}
	return out
}

// rowsToMaps — конвертирует AoA в []map по заголовкам, пропуская полностью пустые строки.
func rowsToMaps(rows [][]string, headers []string, headerRow int) []map[string]string {
	start := headerRow // первая строка после заголовков
	if start < 1 {
		start = 1
	}
	var out []map[string]string
	for r := start; r < len(rows); r++ {
		rec := rows[r]
		m := make(map[string]string, len(headers))
		empty := true
		for c := 0; c < len(headers); c++ {
			var v string
			if c < len(rec) {
				v = normalizeCell(rec[c])
			}
			if v != "" {
				empty = false
			}
			m[headers[c]] = v
		}
		if !empty {
			out = append(out, m)
		}
	}
	return out
}

// normalizeCell: NBSP/NNBSP → пробел, обрезка по краям.
func normalizeCell(s string) string {
	s = strings.NewReplacer("\u00A0", " ", "\u202F", " ").Replace(s)
	return strings.TrimSpace(s)
}
