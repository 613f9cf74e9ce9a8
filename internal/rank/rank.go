// Package rank maps a rating to a display tier. Tiers are derived on the fly and never stored.
package rank

import "math"

// Tier is a named rating band. MaxRating is exclusive; the top tier is unbounded.
type Tier struct {
	Name      string  `json:"name"`
	MinRating float64 `json:"min_rating"`
	MaxRating float64 `json:"-"`
	Color     string  `json:"color"`
}

// Tiers are ordered from lowest to highest.
var Tiers = []Tier{
	{Name: "Iron", MinRating: 0, MaxRating: 400, Color: "#7B7B7B"},
	{Name: "Bronze", MinRating: 400, MaxRating: 800, Color: "#CD7F32"},
	{Name: "Gold", MinRating: 800, MaxRating: 1200, Color: "#FFD700"},
	{Name: "Diamond", MinRating: 1200, MaxRating: 1600, Color: "#B9F2FF"},
	{Name: "Master", MinRating: 1600, MaxRating: 2000, Color: "#9B59B6"},
	{Name: "Challenger", MinRating: 2000, MaxRating: math.Inf(1), Color: "#E74C3C"},
}

// Classify returns the tier whose band contains rating. Ratings below zero fall into the lowest tier.
func Classify(rating float64) Tier {
	for i := len(Tiers) - 1; i >= 0; i-- {
		if rating >= Tiers[i].MinRating {
			return Tiers[i]
		}
	}
	return Tiers[0]
}

// IsTop reports whether t is the highest tier.
func (t Tier) IsTop() bool {
	return math.IsInf(t.MaxRating, 1)
}

// Progress returns how far rating has climbed through its tier, from 0 to 100.
func Progress(rating float64) float64 {
	tier := Classify(rating)
	if tier.IsTop() {
		return 100
	}

	p := (rating - tier.MinRating) / (tier.MaxRating - tier.MinRating) * 100
	return math.Max(0, math.Min(100, p))
}
