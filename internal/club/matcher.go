package club

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/log"
)

const (
	// A suggestion scoring above autoMatchThreshold is accepted without confirmation.
	autoMatchThreshold = 0.8
	minSuggestionScore = 0.3
	maxSuggestions     = 5
)

// PlayerSuggestion is a roster member that resembles a free-text name.
type PlayerSuggestion struct {
	Player     Player
	Confidence float64
	Reasons    []string
}

// MatchPlayerName resolves a free-text name, e.g. from a slash command, against the roster.
// It returns the player when one matches with high confidence, otherwise a ranked list of suggestions.
func MatchPlayerName(players []Player, query string) (*Player, []PlayerSuggestion) {
	normalizedQuery := normalizeName(query)
	if normalizedQuery == "" {
		return nil, nil
	}

	var suggestions []PlayerSuggestion
	for _, player := range players {
		normalizedName := normalizeName(player.Name)
		if normalizedName == normalizedQuery {
			log.Debug("Found exact player name match", "query", query, "player", player.Name)
			p := player
			return &p, nil
		}

		score := nameSimilarity(normalizedQuery, normalizedName)
		if score > minSuggestionScore {
			suggestions = append(suggestions, PlayerSuggestion{
				Player:     player,
				Confidence: score,
				Reasons:    matchReasons(normalizedQuery, normalizedName),
			})
		}
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		return suggestions[i].Confidence > suggestions[j].Confidence
	})
	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}

	if len(suggestions) > 0 && suggestions[0].Confidence > autoMatchThreshold {
		if len(suggestions) == 1 || suggestions[1].Confidence < suggestions[0].Confidence {
			log.Debug("Auto-matched player name", "query", query, "player", suggestions[0].Player.Name, "confidence", suggestions[0].Confidence)
			p := suggestions[0].Player
			return &p, nil
		}
	}
	return nil, suggestions
}

// nameSimilarity scores how well query resembles name, from 0 to 1.
func nameSimilarity(query, name string) float64 {
	score := max(stringSimilarity(query, name), tokenSimilarity(query, name))
	if strings.Contains(name, query) {
		score = max(score, 0.5+0.5*float64(utf8.RuneCountInString(query))/float64(utf8.RuneCountInString(name)))
	}
	return score
}

// normalizeName lowercases, strips everything but letters and spaces, and collapses whitespace.
func normalizeName(name string) string {
	var result strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsSpace(r) {
			result.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(result.String()), " ")
}

func stringSimilarity(s1, s2 string) float64 {
	if s1 == s2 {
		return 1.0
	}
	if s1 == "" || s2 == "" {
		return 0.0
	}

	r1, r2 := []rune(s1), []rune(s2)
	maxLen := max(len(r1), len(r2))
	return 1.0 - float64(levenshteinDistance(r1, r2))/float64(maxLen)
}

// tokenSimilarity is the share of tokens that have a close counterpart in the other name.
func tokenSimilarity(s1, s2 string) float64 {
	tokens1 := strings.Fields(s1)
	tokens2 := strings.Fields(s2)
	if len(tokens1) == 0 || len(tokens2) == 0 {
		return 0.0
	}

	var matchCount int
	for _, token1 := range tokens1 {
		for _, token2 := range tokens2 {
			if token1 == token2 || stringSimilarity(token1, token2) > autoMatchThreshold {
				matchCount++
				break
			}
		}
	}
	return float64(matchCount) / float64(max(len(tokens1), len(tokens2)))
}

func levenshteinDistance(s1, s2 []rune) int {
	prev := make([]int, len(s2)+1)
	curr := make([]int, len(s2)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(s1); i++ {
		curr[0] = i
		for j := 1; j <= len(s2); j++ {
			cost := 1
			if s1[i-1] == s2[j-1] {
				cost = 0
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}
	return prev[len(s2)]
}

func matchReasons(query, name string) []string {
	var reasons []string
	switch {
	case strings.HasPrefix(name, query):
		reasons = append(reasons, "Name starts with query")
	case stringSimilarity(query, name) > autoMatchThreshold:
		reasons = append(reasons, "Very similar name")
	}
	if tokenSimilarity(query, name) > 0.5 {
		reasons = append(reasons, "Matching name components")
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "Partial name similarity")
	}
	return reasons
}
