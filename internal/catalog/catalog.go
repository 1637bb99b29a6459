// Package catalog turns raw store exports into ordered []model.Product.
package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"

	"price-recon/internal/fileio"
	"price-recon/internal/reconcile/model"
)

type Format string

const (
	FormatAuto     Format = ""
	FormatProducts Format = "json"    // [{"name","price"}]
	FormatStoreA   Format = "store-a" // сырой JSON магазина A
	FormatStoreB   Format = "store-b" // сырой JSON магазина B со страницами HTML
	FormatHTML     Format = "html"    // одна HTML-страница магазина B
	FormatTable    Format = "table"   // csv/xls/xlsx с колонками имя/цена
)

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatAuto, FormatProducts, FormatStoreA, FormatStoreB, FormatHTML, FormatTable:
		return f, nil
	case "auto":
		return FormatAuto, nil
	default:
		return "", fmt.Errorf("%w: catalog format %q", fileio.ErrUnsupportedFormat, s)
	}
}

// detect — формат по расширению, когда он не задан явно.
func detect(filename string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); {
	case ext == ".json":
		return FormatProducts, nil
	case ext == ".html" || ext == ".htm":
		return FormatHTML, nil
	case fileio.IsTable(filename):
		return FormatTable, nil
	default:
		return "", fmt.Errorf("%w: %s", fileio.ErrUnsupportedFormat, filename)
	}
}

// Read разбирает каталог из r. filename нужен для автоопределения формата и таблиц.
func Read(r io.Reader, filename string, format Format) ([]model.Product, error) {
	if format == FormatAuto {
		f, err := detect(filename)
		if err != nil {
			return nil, err
		}
		format = f
	}
	switch format {
	case FormatProducts:
		return ReadProducts(r)
	case FormatStoreA:
		return ParseStoreA(r)
	case FormatStoreB:
		return ParseStoreB(r)
	case FormatHTML:
		return ParseStoreBHTML(r)
	case FormatTable:
		rows, err := fileio.ReadAnyMaps(r, filename, 1)
		if err != nil {
			return nil, err
		}
		return FromTable(rows, DefaultColumns), nil
	default:
		return nil, fmt.Errorf("%w: catalog format %q", fileio.ErrUnsupportedFormat, format)
	}
}

// Load — Read для файла на диске.
func Load(path string, format Format) ([]model.Product, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "open catalog %s", path)
	}
	defer f.Close()
	products, err := Read(f, filepath.Base(path), format)
	if err != nil {
		return nil, eris.Wrapf(err, "load catalog %s", path)
	}
	return products, nil
}

// ReadProducts читает уже разобранный каталог [{"name","price"}].
func ReadProducts(r io.Reader) ([]model.Product, error) {
	var products []model.Product
	if err := json.NewDecoder(r).Decode(&products); err != nil {
		return nil, eris.Wrap(err, "decode products")
	}
	return products, nil
}

// WriteProducts — обратная операция: отступ 4 пробела, юникод как есть.
func WriteProducts(w io.Writer, products []model.Product) error {
	if products == nil {
		products = []model.Product{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	return eris.Wrap(enc.Encode(products), "encode products")
}
