package catalog

import (
	"fmt"
	"regexp"
	"strings"

	"price-recon/internal/reconcile/model"
	"price-recon/internal/reconcile/service"
	"price-recon/internal/utils"
)

// Columns — какие заголовки искать. Варианты через "|": первый — основной.
type Columns struct {
	Name  string
	Price string
}

var DefaultColumns = Columns{
	Name:  "name|product|product name|item|description|nombre|producto|наименование",
	Price: "price|current price|cost|precio|цена",
}

var headerJunk = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// нормализуем имя колонки: нижний регистр, без служебных символов и лишних пробелов
func normHeaderKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = headerJunk.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// resolveKey ищет реальный ключ записи по желаемому имени:
// точное совпадение, затем по нормализованному виду, затем самое длинное вхождение.
func resolveKey(rec map[string]string, want string) string {
	want = strings.TrimSpace(want)
	if want == "" {
		return ""
	}
	alts := strings.Split(want, "|")
	norm := make([]string, 0, len(alts))
	for _, a := range alts {
		a = strings.TrimSpace(a)
		if _, ok := rec[a]; ok {
			return a
		}
		norm = append(norm, normHeaderKey(a))
	}

	bestKey, bestScore := "", 0
	for k := range rec {
		nk := normHeaderKey(k)
		score := 0
		for _, n := range norm {
			if n == "" {
				continue
			}
			if nk == n {
				return k
			}
			// "unit price (usd)" содержит "price"
			if strings.Contains(nk, n) && len(n) > score {
				score = len(n)
			}
		}
		// при равенстве — лексикографически меньший ключ, чтобы не зависеть от порядка map
		if score > bestScore || score == bestScore && score > 0 && k < bestKey {
			bestScore, bestKey = score, k
		}
	}
	return bestKey
}

// FromTable собирает каталог из строк таблицы. Число в ячейке цены ("3,5", "3.50")
// становится "$3.50", остальное идёт через NormalizePrice.
func FromTable(rows []map[string]string, cols Columns) []model.Product {
	products := make([]model.Product, 0, len(rows))
	for _, rec := range rows {
		nameKey := resolveKey(rec, cols.Name)
		priceKey := resolveKey(rec, cols.Price)
		if nameKey == "" || priceKey == "" || nameKey == priceKey {
			continue
		}
		name := service.NormalizeName(rec[nameKey])
		price := tablePrice(rec[priceKey])
		if name == "" || price == "" {
			continue
		}
		products = append(products, model.Product{Name: name, Price: price})
	}
	return products
}

func tablePrice(cell string) string {
	cell = strings.TrimSpace(cell)
	// отрицательная цена — не цена (ParsePrice знак не видит)
	if strings.HasPrefix(cell, "-") {
		return ""
	}
	if v, ok := utils.ParseDecimal(cell); ok {
		if v < 0 {
			return ""
		}
		return fmt.Sprintf("$%.2f", v)
	}
	return service.NormalizePrice(cell)
}
