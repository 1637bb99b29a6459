package utils

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	rxKeepNums   = regexp.MustCompile(`[^\d\.\-]`)
	rxKeepAmount = regexp.MustCompile(`[^\d.]`)
)

// ParseDecimal парсит числа из таблиц: "1 234,50", "197 ,00", "2 345,6" (NBSP/NNBSP) и т.п.
// Нужна для ячеек, где цена лежит числом, а не строкой вида "$3.50".
func ParseDecimal(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	// убрать неразрывные/узкие пробелы и обычные пробелы
	repl := strings.NewReplacer("\u00A0", "", "\u202F", "", " ", "", "\t", "", ",", ".")
	s = repl.Replace(s)
	// ячейка должна быть числом целиком: "$3.50" сюда не относится
	if rxKeepNums.MatchString(s) {
		return 0, false
	}
	if s == "" || s == "-" || s == "." {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	return f, err == nil
}

// StripAmount оставляет в строке только цифры и точку: "$1,079.00" -> "1079.00".
func StripAmount(s string) string {
	return rxKeepAmount.ReplaceAllString(s, "")
}
