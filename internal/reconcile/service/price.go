package service

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"price-recon/internal/utils"
)

// ErrInvalidPriceFormat — в строке цены нет числа. Оркестратор решает: пропустить запись или прервать прогон.
var ErrInvalidPriceFormat = errors.New("invalid price format")

// ParsePrice выбрасывает всё, кроме цифр и точки, и парсит остаток.
func ParsePrice(s string) (float64, error) {
	num := utils.StripAmount(s)
	if num == "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPriceFormat, s)
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPriceFormat, s)
	}
	return v, nil
}

// PriceDiff — |a-b| в виде "$D.DD". Симметрична.
func PriceDiff(priceA, priceB string) (string, error) {
	a, err := ParsePrice(priceA)
	if err != nil {
		return "", err
	}
	b, err := ParsePrice(priceB)
	if err != nil {
		return "", err
	}
	return formatDollars(math.Abs(a - b)), nil
}

func formatDollars(v float64) string { return fmt.Sprintf("$%.2f", v) }

func formatUnitDollars(v float64) string { return fmt.Sprintf("$%.4f", v) }
