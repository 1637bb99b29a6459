package service

import (
	"regexp"
	"strconv"
	"strings"

	"price-recon/internal/reconcile/model"
)

// число (целое или дробное), необязательный пробел, единица из словаря unitWord.
// RE2 берёт первую подходящую альтернативу, поэтому "fl oz" выигрывает у "oz".
var reQtyUnit = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(` + unitWord + `)`)

// ExtractUnitPrice ищет в имени первое "количество+единица" и делит на него цену.
// Без количества (или при нулевом) — вся цена за одну штуку ITEM.
// Ошибка возможна только из-за битой цены.
func ExtractUnitPrice(name, price string) (model.UnitPrice, error) {
	total, err := ParsePrice(price)
	if err != nil {
		return model.UnitPrice{}, err
	}
	if m := reQtyUnit.FindStringSubmatch(name); m != nil {
		if qty, err := strconv.ParseFloat(m[1], 64); err == nil && qty > 0 {
			return model.UnitPrice{
				Value:    total / qty,
				Quantity: qty,
				Unit:     strings.ToUpper(m[2]),
			}, nil
		}
	}
	return model.UnitPrice{Value: total, Quantity: 1, Unit: model.UnitItem}, nil
}
