package catalog

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"price-recon/internal/fileio"
	"price-recon/internal/reconcile/model"
)

const storeAJSON = `[
  {"data": {"product": {"name": "Apple Juice, 500 ml", "priceInfo": {"currentPrice": {"price": 2}}}}},
  {"data": {"product": {"name": "Bread (white)", "priceInfo": {"currentPrice": {"price": 2.499}}}}},
  {"data": {"product": {"name": "No price"}}},
  {"data": {}},
  "garbage"
]`

func TestParseStoreA(t *testing.T) {
	got, err := ParseStoreA(strings.NewReader(storeAJSON))
	require.NoError(t, err)
	assert.Equal(t, []model.Product{
		{Name: "APPLE JUICE 500 ML", Price: "$2.00"},
		{Name: "BREAD WHITE", Price: "$2.50"},
	}, got)
}

func TestParseStoreA_NotAnArray(t *testing.T) {
	_, err := ParseStoreA(strings.NewReader(`{"data": 1}`))
	assert.Error(t, err)
}

const cardsHTML = `<html><body>
<div class="product-grid-item">
  <h3><a href="/p/1"> Jugo de Manzana </a></h3>
  <p class="text-center text-muted">500 ML</p>
  <p class="text-center precio" style="">2/$4.00</p>
</div>
<div class="product-grid-item">
  <h3><a href="/p/2">Cereal, Honey</a></h3>
  <p class="text-center text-muted">18 OZ</p>
  <p class="text-center precio">$3.75</p>
</div>
<div class="product-grid-item">
  <h3><a href="/p/3">Chicle</a></h3>
  <p class="text-center precio">40¢</p>
</div>
<div class="product-grid-item">
  <h3><a href="/p/4">Sin precio</a></h3>
</div>
</body></html>`

func TestParseStoreBHTML_Cards(t *testing.T) {
	got, err := ParseStoreBHTML(strings.NewReader(cardsHTML))
	require.NoError(t, err)
	assert.Equal(t, []model.Product{
		{Name: "JUGO DE MANZANA 500 ML", Price: "$4.00"},
		{Name: "CEREAL HONEY 18 OZ", Price: "$3.75"},
		{Name: "CHICLE", Price: "0.40"},
	}, got)
}

func TestParseStoreBHTML_CardWithoutHeading(t *testing.T) {
	page := `<div class="product-grid-item"><span>Leche</span><p class="text-muted">1 GAL</p><p class="precio">$3.10</p></div>`
	got, err := ParseStoreBHTML(strings.NewReader(page))
	require.NoError(t, err)
	require.Len(t, got, 1)
	// без h3>a имя — весь текст карточки, как есть
	assert.Equal(t, "LECHE1 GAL310 1 GAL", got[0].Name)
	assert.Equal(t, "$3.10", got[0].Price)
}

const linesHTML = `<html><head><style>.x{}</style><script>var price = "$1";</script></head><body>
<div>Leche Entera</div><div>1 GAL</div><div>$3.10</div>
<div>OFERTA</div>
<div>Pan Blanco</div><div>$2.50 lb</div>
<div>Huevos</div><div>12 CT</div><div>$4.80</div>
<div>Footer text</div>
</body></html>`

func TestParseStoreBHTML_Lines(t *testing.T) {
	got, err := ParseStoreBHTML(strings.NewReader(linesHTML))
	require.NoError(t, err)
	assert.Equal(t, []model.Product{
		{Name: "LECHE ENTERA 1 GAL", Price: "$3.10"},
		{Name: "PAN BLANCO", Price: "$2.50"},
		{Name: "HUEVOS 12 CT", Price: "$4.80"},
	}, got)
}

func TestParseLines_Resync(t *testing.T) {
	lines := []string{"$9.99", "A", "B", "C", "D", "E", "$1.00", "especial", "F", "$2.00"}
	got := parseLines(lines)
	assert.Equal(t, []model.Product{
		{Name: "D E", Price: "$1.00"},
		{Name: "F", Price: "$2.00"},
	}, got)
}

func TestParseStoreB(t *testing.T) {
	in := `[{"data": {"html_data": "<div>Leche</div><div>1 GAL</div><div>$3.10</div>"}}, {"data": {"html_data": ""}}]`
	got, err := ParseStoreB(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, []model.Product{{Name: "LECHE 1 GAL", Price: "$3.10"}}, got)
}

func TestFromTable(t *testing.T) {
	rows := []map[string]string{
		{"Product Name": "Apple Juice 500ml", "Unit Price (USD)": "2,00"},
		{"Product Name": "Bread", "Unit Price (USD)": "$2.50 lb"},
		{"Product Name": "", "Unit Price (USD)": "1"},
		{"Product Name": "Soap", "Unit Price (USD)": ""},
		{"Product Name": "Refund", "Unit Price (USD)": "-3,50"},
		{"Product Name": "Coupon", "Unit Price (USD)": "-$1.00"},
	}
	got := FromTable(rows, DefaultColumns)
	assert.Equal(t, []model.Product{
		{Name: "APPLE JUICE 500ML", Price: "$2.00"},
		{Name: "BREAD", Price: "$2.50"},
	}, got)
}

func TestResolveKey(t *testing.T) {
	rec := map[string]string{"Наименование товара": "x", "Цена, руб": "1", "price": "2"}
	assert.Equal(t, "Наименование товара", resolveKey(rec, "name|наименование"))
	assert.Equal(t, "price", resolveKey(rec, "price|цена"))
	assert.Equal(t, "", resolveKey(rec, "sku"))
	assert.Equal(t, "", resolveKey(rec, ""))
}

func TestReadDetectsFormat(t *testing.T) {
	got, err := Read(strings.NewReader(`[{"name":"MILK","price":"$1.00"}]`), "a.json", FormatAuto)
	require.NoError(t, err)
	assert.Equal(t, []model.Product{{Name: "MILK", Price: "$1.00"}}, got)

	got, err = Read(strings.NewReader("name,price\nMilk,1.5\n"), "a.csv", FormatAuto)
	require.NoError(t, err)
	assert.Equal(t, []model.Product{{Name: "MILK", Price: "$1.50"}}, got)

	_, err = Read(strings.NewReader(""), "a.txt", FormatAuto)
	assert.ErrorIs(t, err, fileio.ErrUnsupportedFormat)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("Store-A")
	require.NoError(t, err)
	assert.Equal(t, FormatStoreA, f)

	f, err = ParseFormat("auto")
	require.NoError(t, err)
	assert.Equal(t, FormatAuto, f)

	_, err = ParseFormat("yaml")
	assert.ErrorIs(t, err, fileio.ErrUnsupportedFormat)
}

func TestLoadAndWriteProducts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "parsed.json")

	var buf bytes.Buffer
	want := []model.Product{{Name: "CAFÉ 12 OZ", Price: "$7.00"}}
	require.NoError(t, WriteProducts(&buf, want))
	assert.Contains(t, buf.String(), "CAFÉ")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	got, err := Load(path, FormatAuto)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = Load(filepath.Join(dir, "missing.json"), FormatAuto)
	assert.Error(t, err)
}
