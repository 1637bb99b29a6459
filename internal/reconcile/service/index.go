package service

import (
	"price-recon/internal/reconcile/model"
)

// Lookup — каталог A, проиндексированный по имени: имя -> цена.
// Только чтение после buildLookup, поэтому безопасен для параллельного прохода по B.
type Lookup struct {
	byName map[string]string
	names  []string // порядок первого появления; он же порядок тай-брейка
	keys   []string // matchKey(names[i])
	dups   int
}

func buildLookup(rows []model.Product, opt model.Options) *Lookup {
	idx := &Lookup{byName: make(map[string]string, len(rows))}
	for _, r := range rows {
		name := r.Name
		if opt.NormalizeNames {
			name = NormalizeName(name)
		}
		if name == "" {
			continue
		}
		if _, ok := idx.byName[name]; ok {
			idx.dups++
			if opt.Duplicates == model.DuplicateFirstWins {
				continue
			}
			idx.byName[name] = r.Price
			continue
		}
		idx.byName[name] = r.Price
		idx.names = append(idx.names, name)
		idx.keys = append(idx.keys, matchKey(name))
	}
	return idx
}

func (idx *Lookup) Len() int { return len(idx.names) }

func (idx *Lookup) Price(name string) (string, bool) {
	p, ok := idx.byName[name]
	return p, ok
}

func (idx *Lookup) best(query string) (model.MatchResult, bool) {
	return bestMatchKeyed(matchKey(query), idx.names, idx.keys)
}
