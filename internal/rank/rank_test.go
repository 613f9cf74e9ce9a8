package rank_test

import (
	"testing"

	"github.com/mauv0809/babyfoot-ledger/internal/rank"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	testCases := []struct {
		rating float64
		want   string
	}{
		{-5, "Iron"},
		{0, "Iron"},
		{399.9, "Iron"},
		{400, "Bronze"},
		{799, "Bronze"},
		{800, "Gold"},
		{1000, "Gold"},
		{1200, "Diamond"},
		{1600, "Master"},
		{1999, "Master"},
		{2000, "Challenger"},
		{5000, "Challenger"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, rank.Classify(tc.rating).Name, "rating %v", tc.rating)
	}
}

func TestClassify_Colors(t *testing.T) {
	assert.Equal(t, "#FFD700", rank.Classify(1000).Color)
	assert.Equal(t, "#E74C3C", rank.Classify(2400).Color)
}

func TestProgress(t *testing.T) {
	assert.Equal(t, 0.0, rank.Progress(800))
	assert.Equal(t, 50.0, rank.Progress(1000))
	assert.Equal(t, 25.0, rank.Progress(100))
	assert.InDelta(t, 99.75, rank.Progress(1999), 1e-9)
	assert.Equal(t, 100.0, rank.Progress(2000))
	assert.Equal(t, 100.0, rank.Progress(9999))
	assert.Equal(t, 0.0, rank.Progress(-20))
}
