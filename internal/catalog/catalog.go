package catalog

import (
	"strings"

	"gitaid/internal/model"
)

// LanguageAll is the sentinel that disables language filtering.
const LanguageAll = "All"

// Filter returns the repositories whose name contains searchTerm
// (case-insensitive) and whose primary language equals language, unless
// language is LanguageAll. The result is a new slice preserving the input
// order; the inventory is never mutated.
func Filter(repos []model.Repository, searchTerm, language string) []model.Repository {
	term := strings.ToLower(searchTerm)

	out := make([]model.Repository, 0, len(repos))
	for _, r := range repos {
		if !strings.Contains(strings.ToLower(r.Name), term) {
			continue
		}
		if language != LanguageAll && r.Language != language {
			continue
		}
		out = append(out, r)
	}
	return out
}

// DistinctLanguages returns the non-empty languages present in the
// inventory, each once, in first-seen order.
func DistinctLanguages(repos []model.Repository) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range repos {
		if r.Language == "" || seen[r.Language] {
			continue
		}
		seen[r.Language] = true
		out = append(out, r.Language)
	}
	return out
}
