package similar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AstralShardio/pastemyprompt/internal/model"
)

func TestLevenshtein(t *testing.T) {
	t.Parallel()

	cases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"héllo", "hello", 1},
		{"write a 3-line cold email for saas", "write a 3 line cold email for saas product", 9},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Levenshtein(tc.a, tc.b), "Levenshtein(%q, %q)", tc.a, tc.b)
	}
}

func TestSimilarity_IdentityAndSymmetry(t *testing.T) {
	t.Parallel()

	samples := []string{"", "a", "kitten", "sitting", "Write a 3-line cold email", "héllo wörld"}
	for _, a := range samples {
		assert.Equal(t, 1.0, Similarity(a, a), "Similarity(%q, %q)", a, a)
		for _, b := range samples {
			assert.Equal(t, Similarity(a, b), Similarity(b, a), "symmetry for %q / %q", a, b)
			s := Similarity(a, b)
			assert.GreaterOrEqual(t, s, 0.0)
			assert.LessOrEqual(t, s, 1.0)
		}
	}
}

func TestSimilarity_DoesNotFoldCase(t *testing.T) {
	t.Parallel()

	assert.Less(t, Similarity("ABC", "abc"), 1.0)
	assert.InDelta(t, 0.0, Similarity("", "abc"), 1e-9)
	assert.InDelta(t, 0.8, Similarity("héllo", "hello"), 1e-9)
}

func TestFindDuplicates_ExcludesTargetAndSortsDescending(t *testing.T) {
	t.Parallel()

	target := model.Prompt{ID: "p1", Prompt: "Write a 3-line cold email for SaaS"}
	corpus := []model.Prompt{
		target,
		{ID: "far", Prompt: "Draft a limerick about the sea"},
		{ID: "p2", Prompt: "Write a 3 line cold email for SaaS product"},
		{ID: "p3", Prompt: "write a 3 line cold email for saas"},
		{ID: "p4", Prompt: "WRITE A 3-LINE COLD EMAIL FOR SAAS!"},
	}

	got := FindDuplicates(target, corpus, 0.75)
	require.Len(t, got, 3)
	for _, m := range got {
		assert.NotEqual(t, target.ID, m.Prompt.ID)
	}
	assert.Equal(t, "p4", got[0].Prompt.ID)
	assert.Equal(t, 97, got[0].Percent)
	assert.Equal(t, "p3", got[1].Prompt.ID)
	assert.Equal(t, 97, got[1].Percent)
	assert.Equal(t, "p2", got[2].Prompt.ID)
	// 9 edits over 42 runes is 33/42. Often quoted as 85-95%, but it stays below 0.8.
	assert.Equal(t, 79, got[2].Percent)

	// At the default threshold the trailing "product" variant falls just short.
	got = FindDuplicates(target, corpus, DefaultThreshold)
	require.Len(t, got, 2)
	for _, m := range got {
		assert.NotEqual(t, "p2", m.Prompt.ID)
	}
}

func TestFindDuplicates_TiesKeepCorpusOrder(t *testing.T) {
	t.Parallel()

	target := model.Prompt{ID: "t", Prompt: "abcde"}
	corpus := []model.Prompt{
		{ID: "x", Prompt: "abcdx"},
		{ID: "y", Prompt: "abcdy"},
		{ID: "z", Prompt: "abcde"},
	}
	got := FindDuplicates(target, corpus, 0.8)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"z", "x", "y"}, []string{got[0].Prompt.ID, got[1].Prompt.ID, got[2].Prompt.ID})
}

func TestFindDuplicates_ThresholdIsInclusive(t *testing.T) {
	t.Parallel()

	got := FindDuplicates(model.Prompt{ID: "a", Prompt: "héllo"}, []model.Prompt{{ID: "b", Prompt: "hello"}}, 0.8)
	require.Len(t, got, 1)
	assert.Equal(t, 80, got[0].Percent)
}

func TestScan_FindsPairsInBothModes(t *testing.T) {
	t.Parallel()

	corpus := []model.Prompt{
		{ID: "a", Prompt: "Summarize this article in five bullet points"},
		{ID: "b", Prompt: "Write a haiku about autumn"},
		{ID: "c", Prompt: "Summarise this article in five bullet points"},
		{ID: "d", Prompt: "Summarize this article in 5 bullet points"},
	}

	exact := Scan(corpus, ScanOptions{Threshold: 0.85})
	require.Len(t, exact, 3)
	assert.Equal(t, "a", exact[0].A.ID)
	assert.Equal(t, "c", exact[0].B.ID)
	assert.Equal(t, 98, exact[0].Percent)

	fast := Scan(corpus, ScanOptions{Threshold: 0.85, Fast: true})
	require.NotEmpty(t, fast)
	for _, p := range fast {
		assert.GreaterOrEqual(t, p.Similarity, 0.85)
		assert.NotEqual(t, "b", p.A.ID)
		assert.NotEqual(t, "b", p.B.ID)
	}
}

func TestFingerprint_IdenticalTextMatches(t *testing.T) {
	t.Parallel()

	a := Fingerprint("write a 3-line cold email for saas")
	b := Fingerprint("write a 3-line cold email for saas")
	assert.Equal(t, 0, HammingDistance(a, b))
	assert.Equal(t, 64, HammingDistance(0, ^uint64(0)))
}
