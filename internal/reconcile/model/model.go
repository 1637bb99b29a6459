package model

import "fmt"

// Product — одна позиция каталога: имя и цена строкой ("$D.DD" после нормализации).
type Product struct {
	Name  string `json:"name"`
	Price string `json:"price"`
}

// DuplicatePolicy — что делать, если два товара каталога A схлопнулись в одно имя.
type DuplicatePolicy string

const (
	DuplicateLastWins  DuplicatePolicy = "last-wins"  // цена берётся у последнего дубля
	DuplicateFirstWins DuplicatePolicy = "first-wins" // цена берётся у первого дубля
)

func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch DuplicatePolicy(s) {
	case "", DuplicateLastWins:
		return DuplicateLastWins, nil
	case DuplicateFirstWins:
		return DuplicateFirstWins, nil
	default:
		return "", fmt.Errorf("unknown duplicate policy %q", s)
	}
}

const DefaultThreshold = 90.0

type Options struct {
	Threshold      float64         // порог схожести 0..100, совпадение принимается при score >= Threshold
	NormalizeNames bool            // прогонять имена обоих каталогов через NormalizeName
	Duplicates     DuplicatePolicy // схлопывание дублей в каталоге A
	StrictPrices   bool            // битая цена прерывает весь прогон вместо пропуска записи
	Workers        int             // >1 — параллельный проход по каталогу B
}

func DefaultOptions() Options {
	return Options{
		Threshold:      DefaultThreshold,
		NormalizeNames: true,
		Duplicates:     DuplicateLastWins,
		Workers:        1,
	}
}

// MatchResult — результат одного нечеткого поиска.
type MatchResult struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"` // 0..100
	Index int     `json:"index"` // позиция кандидата в пуле
}

// UnitPrice — цена за единицу. Quantity всегда > 0.
type UnitPrice struct {
	Value    float64 `json:"value"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

const UnitItem = "ITEM"

func (u UnitPrice) String() string {
	return fmt.Sprintf("$%.4f PER %s", u.Value, u.Unit)
}

// Record — строка итогового отчёта. _a — товар каталога A, _b — товар каталога B.
type Record struct {
	ProductNameA  string  `json:"product_name_a"`
	ProductNameB  string  `json:"product_name_b"`
	PriceA        string  `json:"price_a"`
	PriceB        string  `json:"price_b"`
	PriceDiff     string  `json:"price_diff"`
	UnitPriceA    string  `json:"unit_price_a"`
	UnitPriceB    string  `json:"unit_price_b"`
	UnitPriceDiff string  `json:"unit_price_diff"`
	MatchingScore float64 `json:"matching_score"`
}

// Rejection — запись каталога B, не попавшая в отчёт (в сам отчёт не пишется).
type Rejection struct {
	Name   string  `json:"name"`
	Price  string  `json:"price"`
	Reason string  `json:"reason"` // below_threshold | invalid_price | no_candidates
	Best   string  `json:"best,omitempty"`
	Score  float64 `json:"score,omitempty"`
}

const (
	ReasonBelowThreshold = "below_threshold"
	ReasonInvalidPrice   = "invalid_price"
	ReasonNoCandidates   = "no_candidates"
)

type Stats struct {
	CatalogA       int `json:"catalogA"`
	CatalogB       int `json:"catalogB"`
	UniqueA        int `json:"uniqueA"`
	DuplicatesA    int `json:"duplicatesA"`
	Matched        int `json:"matched"`
	BelowThreshold int `json:"belowThreshold"`
	InvalidPrices  int `json:"invalidPrices"`
}

type Result struct {
	Records  []Record    `json:"records"`
	Rejected []Rejection `json:"rejected"`
	Stats    Stats       `json:"stats"`
	Opts     Options     `json:"opts"`
}
