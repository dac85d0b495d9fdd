package mutate

import (
	"github.com/AstralShardio/pastemyprompt/internal/model"
	"github.com/AstralShardio/pastemyprompt/internal/store"
)

func SetSortBy(db *store.DB, key string) (model.SortKey, error) {
	sk, ok := model.ParseSortKey(key)
	if !ok {
		return "", ValidationError{Field: "sortBy", Message: "unknown sort key " + key + " (use lastUsed, copyCount, title or createdAt)"}
	}
	db.SortBy = sk
	return sk, nil
}

// CycleSortBy advances to the next sort key.
func CycleSortBy(db *store.DB) model.SortKey {
	keys := model.SortKeys()
	next := keys[0]
	for i, k := range keys {
		if k == db.SortBy {
			next = keys[(i+1)%len(keys)]
			break
		}
	}
	db.SortBy = next
	return next
}

func SetDarkMode(db *store.DB, on bool) { db.DarkMode = on }

func SetPro(db *store.DB, on bool) { db.Pro = on }

// CompleteOnboarding clears the first-run flag.
func CompleteOnboarding(db *store.DB) bool {
	if !db.FirstTimeUser {
		return false
	}
	db.FirstTimeUser = false
	return true
}
