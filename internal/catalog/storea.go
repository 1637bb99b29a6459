package catalog

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rotisserie/eris"

	"price-recon/internal/reconcile/model"
	"price-recon/internal/reconcile/service"
)

// storeAItem — только те поля выгрузки магазина A, что нам нужны.
type storeAItem struct {
	Data struct {
		Product *struct {
			Name      string `json:"name"`
			PriceInfo *struct {
				CurrentPrice *struct {
					Price *float64 `json:"price"`
				} `json:"currentPrice"`
			} `json:"priceInfo"`
		} `json:"product"`
	} `json:"data"`
}

func (it storeAItem) product() (model.Product, bool) {
	p := it.Data.Product
	if p == nil || p.PriceInfo == nil || p.PriceInfo.CurrentPrice == nil || p.PriceInfo.CurrentPrice.Price == nil {
		return model.Product{}, false
	}
	name := service.NormalizeName(p.Name)
	if name == "" {
		return model.Product{}, false
	}
	return model.Product{Name: name, Price: fmt.Sprintf("$%.2f", *p.PriceInfo.CurrentPrice.Price)}, true
}

// ParseStoreA: [{"data":{"product":{"name":..,"priceInfo":{"currentPrice":{"price":3.5}}}}}].
// Позиции без имени или цены пропускаются.
func ParseStoreA(r io.Reader) ([]model.Product, error) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, eris.Wrap(err, "decode store A export")
	}
	products := make([]model.Product, 0, len(raw))
	for _, msg := range raw {
		var it storeAItem
		// битый элемент не валит весь файл
		if err := json.Unmarshal(msg, &it); err != nil {
			continue
		}
		if p, ok := it.product(); ok {
			products = append(products, p)
		}
	}
	return products, nil
}
