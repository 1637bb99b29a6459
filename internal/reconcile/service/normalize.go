package service

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Всё, что не буква/цифра/подчёркивание/пробел — шум для сравнения.
var nonWord = regexp.MustCompile(`[^\p{L}\p{N}_\s]+`)

// NormalizeName — верхний регистр, без пунктуации, без пробелов по краям.
// Цифры и буквы единиц сохраняются: они нужны для ExtractUnitPrice.
func NormalizeName(raw string) string {
	return strings.TrimSpace(nonWord.ReplaceAllString(strings.ToUpper(raw), ""))
}

// Цена в центах: "40¢" (встречается и битое "40Â¢" — тоже содержит ¢)
const centMark = "¢"

var (
	nonDigit       = regexp.MustCompile(`[^\d]`)
	trailingWeight = regexp.MustCompile(`(?i)\s*(lb|oz)\s*$`)
)

// NormalizePrice приводит строку цены к виду "$D.DD".
//
//	"2/$4.00"  -> "$4.00" (мультипак: берём то, что после первого "/")
//	"40¢"      -> "0.40"  (центы; символ валюты не добавляется)
//	"$4.00 oz" -> "$4.00" (хвостовая весовая единица)
func NormalizePrice(raw string) string {
	price := raw
	if i := strings.Index(price, "/"); i >= 0 {
		price = strings.TrimSpace(price[i+1:])
	}
	if strings.Contains(price, centMark) {
		if digits := nonDigit.ReplaceAllString(price, ""); digits != "" {
			if cents, err := strconv.ParseFloat(digits, 64); err == nil {
				price = fmt.Sprintf("%.2f", cents/100)
			}
		}
	}
	return trailingWeight.ReplaceAllString(price, "")
}

// Единицы, которые склеиваются с числом перед сравнением имён ("500 ML" == "500ML").
// Порядок важен: длинные варианты раньше коротких.
const unitWord = `fl oz|oz|ml|lb|g|ct|pk|pack|fo`

var reAttachNumUnit = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s+(` + unitWord + `)\b`)

// matchKey — каноничная форма имени для скоринга: склейка "число единица",
// сортировка токенов.
func matchKey(s string) string {
	s = collapseSpaces(s)
	s = reAttachNumUnit.ReplaceAllString(s, "$1$2")
	return tokenSort(s)
}

// Лексикографическая сортировка токенов
func tokenSort(s string) string {
	f := strings.Fields(s)
	sort.Strings(f)
	return strings.Join(f, " ")
}

// Схлопывание пробелов
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
