package service

import (
	"github.com/antzucaro/matchr"

	"price-recon/internal/reconcile/model"
)

// similarity — нормированное расстояние OSA (Damerau-Levenshtein с
// транспозицией соседних символов) в шкале 0..100.
func similarity(a, b string) float64 {
	if a == "" && b == "" {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}
	d := matchr.OSA(a, b)
	m := len([]rune(a))
	if mb := len([]rune(b)); mb > m {
		m = mb
	}
	return (1 - float64(d)/float64(m)) * 100
}

// TokenSortScore: порядок слов не важен ("JUICE APPLE" == "APPLE JUICE"),
// "500 ML" == "500ML".
func TokenSortScore(a, b string) float64 {
	return similarity(matchKey(a), matchKey(b))
}

// BestMatch возвращает самого похожего кандидата. При равенстве — первый по порядку.
// false только для пустого пула; порог здесь не применяется.
func BestMatch(query string, candidates []string) (model.MatchResult, bool) {
	return bestMatchKeyed(matchKey(query), candidates, nil)
}

// bestMatchKeyed — то же, но с заранее посчитанными ключами кандидатов (keys[i] для candidates[i]).
func bestMatchKeyed(queryKey string, candidates, keys []string) (model.MatchResult, bool) {
	best := model.MatchResult{Index: -1, Score: -1}
	for i, cand := range candidates {
		var key string
		if keys != nil {
			key = keys[i]
		} else {
			key = matchKey(cand)
		}
		s := similarity(queryKey, key)
		if s > best.Score {
			best = model.MatchResult{Name: cand, Score: s, Index: i}
		}
	}
	if best.Index < 0 {
		return model.MatchResult{}, false
	}
	return best, true
}
