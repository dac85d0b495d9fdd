package similar

import (
	"math"
	"sort"
	"strings"

	"github.com/AstralShardio/pastemyprompt/internal/model"
)

const DefaultThreshold = 0.8

// Levenshtein returns the edit distance between a and b over runes. Insertions,
// deletions and substitutions each cost 1.
func Levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}
	prev := make([]int, len(rb)+1)
	cur := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(ra); i++ {
		cur[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(rb)]
}

// Similarity is (maxLen - distance) / maxLen, in [0, 1]. Two empty strings are
// identical. It does not fold case; callers lowercase first.
func Similarity(a, b string) float64 {
	maxLen := max(len([]rune(a)), len([]rune(b)))
	if maxLen == 0 {
		return 1.0
	}
	return float64(maxLen-Levenshtein(a, b)) / float64(maxLen)
}

// Percent rounds a similarity to a whole percentage.
func Percent(sim float64) int {
	return int(math.Round(sim * 100))
}

type Match struct {
	Prompt     model.Prompt `json:"prompt"`
	Similarity float64      `json:"similarity"`
	Percent    int          `json:"similarityPercent"`
}

// FindDuplicates compares target's body with every other prompt in corpus,
// case-insensitively, and returns those at or above threshold, most similar first.
// Ties keep corpus order.
func FindDuplicates(target model.Prompt, corpus []model.Prompt, threshold float64) []Match {
	body := strings.ToLower(target.Prompt)
	var out []Match
	for _, p := range corpus {
		if p.ID == target.ID {
			continue
		}
		sim := Similarity(body, strings.ToLower(p.Prompt))
		if sim >= threshold {
			out = append(out, Match{Prompt: p, Similarity: sim, Percent: Percent(sim)})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Similarity > out[j].Similarity })
	return out
}

// Top returns at most n matches.
func Top(matches []Match, n int) []Match {
	if len(matches) > n {
		return matches[:n]
	}
	return matches
}
