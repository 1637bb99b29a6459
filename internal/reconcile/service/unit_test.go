package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"price-recon/internal/reconcile/model"
)

func TestExtractUnitPrice_WithQuantity(t *testing.T) {
	for _, name := range []string{"APPLE JUICE 500 ML", "APPLE JUICE 500 ml", "APPLE JUICE 500ML"} {
		up, err := ExtractUnitPrice(name, "$2.00")
		require.NoError(t, err)
		assert.InDelta(t, 2.0/500, up.Value, 1e-9, name)
		assert.Equal(t, 500.0, up.Quantity, name)
		assert.Equal(t, "ML", up.Unit, name)
	}
}

func TestExtractUnitPrice_WithoutQuantity(t *testing.T) {
	up, err := ExtractUnitPrice("APPLE JUICE", "$2.00")
	require.NoError(t, err)
	assert.Equal(t, model.UnitPrice{Value: 2.0, Quantity: 1, Unit: model.UnitItem}, up)
}

func TestExtractUnitPrice_Units(t *testing.T) {
	cases := []struct {
		name  string
		price string
		qty   float64
		unit  string
	}{
		{"SODA 12 FL OZ", "$3.00", 12, "FL OZ"},
		{"CEREAL 18 OZ", "$3.75", 18, "OZ"},
		{"RICE 2.5 LB", "$5.00", 2.5, "LB"},
		{"EGGS 12 CT", "$4.80", 12, "CT"},
		{"WATER 24 PACK", "$6.00", 24, "PACK"},
		{"YOGURT 4PK", "$4.00", 4, "PK"},
		{"FLOUR 500G", "$1.00", 500, "G"},
		// первое вхождение побеждает
		{"JUICE 6 PK 200 ML", "$6.00", 6, "PK"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			up, err := ExtractUnitPrice(tc.name, tc.price)
			require.NoError(t, err)
			total, _ := ParsePrice(tc.price)
			assert.Equal(t, tc.qty, up.Quantity)
			assert.Equal(t, tc.unit, up.Unit)
			assert.InDelta(t, total/tc.qty, up.Value, 1e-9)
		})
	}
}

func TestExtractUnitPrice_ZeroQuantityFallsBack(t *testing.T) {
	up, err := ExtractUnitPrice("MYSTERY 0 OZ", "$1.50")
	require.NoError(t, err)
	assert.Equal(t, 1.0, up.Quantity)
	assert.Equal(t, model.UnitItem, up.Unit)
	assert.InDelta(t, 1.5, up.Value, 1e-9)
}

func TestExtractUnitPrice_InvalidPrice(t *testing.T) {
	_, err := ExtractUnitPrice("APPLE JUICE 500 ML", "call for price")
	assert.ErrorIs(t, err, ErrInvalidPriceFormat)
}

func TestUnitPriceString(t *testing.T) {
	up := model.UnitPrice{Value: 0.004, Quantity: 500, Unit: "ML"}
	assert.Equal(t, "$0.0040 PER ML", up.String())
}
