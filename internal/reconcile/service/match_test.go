package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBestMatch(t *testing.T) {
	keys := []string{"APPLE JUICE", "BANANA SMOOTHIE", "ORANGE JUICE"}
	m, ok := BestMatch("APPLE JUICE", keys)
	require.True(t, ok)
	assert.Equal(t, "APPLE JUICE", m.Name)
	assert.Equal(t, 0, m.Index)
	assert.GreaterOrEqual(t, m.Score, 90.0)
}

func TestBestMatch_EmptyPool(t *testing.T) {
	_, ok := BestMatch("APPLE JUICE", nil)
	assert.False(t, ok)
}

func TestBestMatch_NoThreshold(t *testing.T) {
	// порог — забота вызывающего: даже слабый кандидат возвращается
	m, ok := BestMatch("DISH SOAP", []string{"APPLE JUICE 500 ML"})
	require.True(t, ok)
	assert.Equal(t, "APPLE JUICE 500 ML", m.Name)
	assert.Less(t, m.Score, 90.0)
}

func TestBestMatch_TieGoesToFirst(t *testing.T) {
	m, ok := BestMatch("APPLE JUICE", []string{"JUICE APPLE", "APPLE JUICE"})
	require.True(t, ok)
	assert.Equal(t, 0, m.Index)
	assert.Equal(t, "JUICE APPLE", m.Name)
	assert.Equal(t, 100.0, m.Score)
}

func TestTokenSortScore(t *testing.T) {
	assert.Equal(t, 100.0, TokenSortScore("JUICE APPLE", "APPLE JUICE"))
	assert.Equal(t, 100.0, TokenSortScore("APPLE JUICE 500 ML", "APPLE JUICE 500ML"))
	assert.Equal(t, 100.0, TokenSortScore("", ""))
	assert.Equal(t, 0.0, TokenSortScore("APPLE", ""))

	s := TokenSortScore("APPLE JUICE", "APLE JUICE")
	assert.Greater(t, s, 90.0)
	assert.Less(t, s, 100.0)

	// транспозиция соседних символов стоит одну правку
	assert.InDelta(t, (1-1.0/5)*100, TokenSortScore("ABCDE", "ABDCE"), 1e-9)
}

func TestSimilarityRange(t *testing.T) {
	pairs := [][2]string{
		{"A", "B"},
		{"MILK", "WHOLE MILK 1 GAL"},
		{"", "X"},
		{"ÑANDÚ", "NANDU"},
	}
	for _, p := range pairs {
		s := similarity(p[0], p[1])
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 100.0)
	}
}
