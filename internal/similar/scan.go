package similar

import (
	"math/bits"
	"sort"
	"strings"
	"unicode"

	"github.com/go-dedup/simhash"

	"github.com/AstralShardio/pastemyprompt/internal/model"
)

// MaxFingerprintDistance is the widest Hamming distance between two fingerprints that
// still gets an exact comparison in fast scans.
const MaxFingerprintDistance = 20

// Pair is one duplicate pair found by Scan. A precedes B in corpus order.
type Pair struct {
	A          model.Prompt `json:"a"`
	B          model.Prompt `json:"b"`
	Similarity float64      `json:"similarity"`
	Percent    int          `json:"similarityPercent"`
}

type ScanOptions struct {
	Threshold float64
	// Fast prefilters candidate pairs by SimHash fingerprint before the exact
	// comparison. It can miss pairs the exhaustive scan finds.
	Fast bool
}

// Scan finds every pair of prompts whose bodies are at least Threshold similar, most
// similar first.
func Scan(corpus []model.Prompt, opts ScanOptions) []Pair {
	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	lowered := make([]string, len(corpus))
	for i, p := range corpus {
		lowered[i] = strings.ToLower(p.Prompt)
	}
	var prints []uint64
	if opts.Fast {
		prints = make([]uint64, len(corpus))
		for i, s := range lowered {
			prints[i] = Fingerprint(s)
		}
	}

	var out []Pair
	for i := 0; i < len(corpus); i++ {
		for j := i + 1; j < len(corpus); j++ {
			if opts.Fast && HammingDistance(prints[i], prints[j]) > MaxFingerprintDistance {
				continue
			}
			if !lengthsCompatible(lowered[i], lowered[j], threshold) {
				continue
			}
			sim := Similarity(lowered[i], lowered[j])
			if sim >= threshold {
				out = append(out, Pair{A: corpus[i], B: corpus[j], Similarity: sim, Percent: Percent(sim)})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Similarity > out[j].Similarity })
	return out
}

// lengthsCompatible is true when the length gap alone does not rule out threshold:
// distance is at least the length difference.
func lengthsCompatible(a, b string, threshold float64) bool {
	la, lb := len([]rune(a)), len([]rune(b))
	maxLen := max(la, lb)
	if maxLen == 0 {
		return true
	}
	diff := la - lb
	if diff < 0 {
		diff = -diff
	}
	return float64(maxLen-diff)/float64(maxLen) >= threshold
}

// bigramFeatures feeds simhash with character bigrams, skipping whitespace and punctuation.
type bigramFeatures struct {
	text string
}

func (f bigramFeatures) GetFeatures() []simhash.Feature {
	runes := []rune(strings.TrimSpace(f.text))
	features := make([]simhash.Feature, 0, len(runes))
	for i := 0; i+1 < len(runes); i++ {
		if skipRune(runes[i]) || skipRune(runes[i+1]) {
			continue
		}
		features = append(features, simhash.NewFeature([]byte(string(runes[i:i+2]))))
	}
	if len(features) == 0 {
		for _, r := range runes {
			if !skipRune(r) {
				features = append(features, simhash.NewFeature([]byte(string(r))))
			}
		}
	}
	return features
}

func skipRune(r rune) bool {
	return unicode.IsSpace(r) || unicode.IsPunct(r)
}

// Fingerprint returns the 64-bit SimHash of text.
func Fingerprint(text string) uint64 {
	return simhash.NewSimhash().GetSimhash(bigramFeatures{text: text})
}

func HammingDistance(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}
