// Package rating converts a 2v2 match result into a symmetric point transfer.
package rating

import (
	"fmt"
	"math"
)

const (
	// DefaultRating is the rating of a newly created player and the value a reset restores.
	DefaultRating = 1000.0

	MinBasePoints = 10
	MaxBasePoints = 100

	// ratingScale turns a rating gap into points: 20 rating points of gap move the base by one.
	ratingScale = 20.0
	neutralBase = 50.0

	// A shutout in a first-to-ten game.
	maxScoreDelta = 10
)

// Transfer is the outcome of a single match: how many points move from the losing team
// to the winning team, and how that number was obtained.
type Transfer struct {
	PointsBase      int     `json:"points_base"`
	Multiplier      float64 `json:"multiplier"`
	PointsEffective int     `json:"points_effective"`
	WinnerChange    int     `json:"winner_change"`
	LoserChange     int     `json:"loser_change"`
}

// ComputeTransfer returns the points each member of the winning team gains and each member of
// the losing team loses. The winner and loser changes are always exact opposites.
func ComputeTransfer(winnerAvg, loserAvg float64, winnerScore, loserScore int) Transfer {
	base := BasePoints(winnerAvg, loserAvg)
	mult := ScoreMultiplier(winnerScore, loserScore)
	effective := int(math.Round(float64(base) * mult))

	return Transfer{
		PointsBase:      base,
		Multiplier:      mult,
		PointsEffective: effective,
		WinnerChange:    effective,
		LoserChange:     -effective,
	}
}

// BasePoints rewards upsets: beating a stronger team is worth more than beating a weaker one.
func BasePoints(winnerAvg, loserAvg float64) int {
	raw := neutralBase + (loserAvg-winnerAvg)/ratingScale
	clamped := math.Max(MinBasePoints, math.Min(MaxBasePoints, raw))
	return int(math.Round(clamped))
}

// ScoreMultiplier scales the base points by how decisive the win was.
func ScoreMultiplier(winnerScore, loserScore int) float64 {
	delta := winnerScore - loserScore
	if delta < 0 {
		delta = -delta
	}

	switch {
	case delta == maxScoreDelta:
		return 1.3
	case delta >= 8:
		return 1.1
	case delta <= 2:
		return 0.9
	default:
		return 1.0
	}
}

// TeamAverage is the arithmetic mean of both teammates' ratings.
func TeamAverage(a, b float64) float64 {
	return (a + b) / 2
}

// ApplyRatingChange adds change to current and floors the result at zero.
func ApplyRatingChange(current float64, change int) float64 {
	return math.Max(0, current+float64(change))
}

// FormatRating renders a rating the way it is displayed everywhere: rounded to an integer.
func FormatRating(r float64) string {
	return fmt.Sprintf("%d", int(math.Round(r)))
}

// FormatRatingChange renders a signed change, e.g. "+12" or "-7".
func FormatRatingChange(change float64) string {
	rounded := int(math.Round(change))
	if rounded > 0 {
		return fmt.Sprintf("+%d", rounded)
	}
	return fmt.Sprintf("%d", rounded)
}
