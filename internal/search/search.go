// Package search filters and sorts catalog snapshots. Everything here is a
// pure function over its input slice; no state is kept between calls.
package search

import (
	"sort"
	"strings"
	"time"

	"spool/internal/domain"
)

// SortBy selects the sort key for search results.
type SortBy string

const (
	SortByName SortBy = "name"
	SortByDate SortBy = "date"
	// SortByRelevance currently orders by date; no distinct relevance
	// scoring exists.
	SortByRelevance SortBy = "relevance"
)

// SortOrder selects ascending or descending result order.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// FilterOptions narrows and orders a mod list. Requirements use AND semantics
// (a mod must satisfy every selected value); Authors use OR semantics (any
// selected value matches).
type FilterOptions struct {
	Requirements []string
	Authors      []string
	SortBy       SortBy
	SortOrder    SortOrder
}

// DefaultFilters returns the filter state the catalog UI starts with:
// nothing selected, newest first.
func DefaultFilters() FilterOptions {
	return FilterOptions{SortBy: SortByDate, SortOrder: SortDesc}
}

// SearchMods applies the query and filters to mods and returns a new sorted
// slice. The input is never mutated.
func SearchMods(mods []domain.Mod, query string, filters FilterOptions) []domain.Mod {
	results := make([]domain.Mod, len(mods))
	copy(results, mods)

	if q := strings.TrimSpace(query); q != "" {
		results = textSearch(results, q)
	}

	if len(filters.Requirements) > 0 {
		results = filterSlice(results, func(m domain.Mod) bool {
			for _, req := range filters.Requirements {
				if !containsFold(m.Requirements, req) {
					return false
				}
			}
			return true
		})
	}

	if len(filters.Authors) > 0 {
		results = filterSlice(results, func(m domain.Mod) bool {
			for _, author := range filters.Authors {
				if containsFold(m.Authors, author) {
					return true
				}
			}
			return false
		})
	}

	sortMods(results, filters.SortBy, filters.SortOrder)
	return results
}

// UniqueRequirements returns the deduplicated, sorted set of requirement
// labels across mods, for building filter-choice UI.
func UniqueRequirements(mods []domain.Mod) []string {
	return uniqueValues(mods, func(m domain.Mod) []string { return m.Requirements })
}

// UniqueAuthors returns the deduplicated, sorted set of author names across
// mods.
func UniqueAuthors(mods []domain.Mod) []string {
	return uniqueValues(mods, func(m domain.Mod) []string { return m.Authors })
}

// Suggestions returns up to max completion candidates for query, drawn from
// mod titles, authors and requirements. Prefix matches sort before plain
// substring matches. Queries shorter than two characters produce nothing.
func Suggestions(mods []domain.Mod, query string, max int) []string {
	query = strings.TrimSpace(query)
	if len(query) < 2 || max <= 0 {
		return nil
	}

	lower := strings.ToLower(query)
	seen := make(map[string]struct{})
	var candidates []string

	add := func(s string) {
		if !strings.Contains(strings.ToLower(s), lower) {
			return
		}
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		candidates = append(candidates, s)
	}

	for _, m := range mods {
		add(m.Title)
		for _, author := range m.Authors {
			add(author)
		}
		for _, req := range m.Requirements {
			add(req)
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		iPrefix := strings.HasPrefix(strings.ToLower(candidates[i]), lower)
		jPrefix := strings.HasPrefix(strings.ToLower(candidates[j]), lower)
		if iPrefix != jPrefix {
			return iPrefix
		}
		return candidates[i] < candidates[j]
	})

	if len(candidates) > max {
		candidates = candidates[:max]
	}
	return candidates
}

// textSearch keeps mods whose title, description, any author, or any
// requirement contains query case-insensitively.
func textSearch(mods []domain.Mod, query string) []domain.Mod {
	lower := strings.ToLower(query)
	return filterSlice(mods, func(m domain.Mod) bool {
		if strings.Contains(strings.ToLower(m.Title), lower) {
			return true
		}
		if strings.Contains(strings.ToLower(m.Description), lower) {
			return true
		}
		for _, author := range m.Authors {
			if strings.Contains(strings.ToLower(author), lower) {
				return true
			}
		}
		for _, req := range m.Requirements {
			if strings.Contains(strings.ToLower(req), lower) {
				return true
			}
		}
		return false
	})
}

func sortMods(mods []domain.Mod, by SortBy, order SortOrder) {
	sort.SliceStable(mods, func(i, j int) bool {
		var less bool
		switch by {
		case SortByName:
			less = mods[i].Title < mods[j].Title
		default: // date and relevance
			less = parseUpdatedAt(mods[i].UpdatedAt).Before(parseUpdatedAt(mods[j].UpdatedAt))
		}
		if order == SortDesc {
			return !less && !equalKey(mods[i], mods[j], by)
		}
		return less
	})
}

// equalKey reports whether two mods compare equal under the sort key, so a
// descending sort stays stable instead of flipping ties.
func equalKey(a, b domain.Mod, by SortBy) bool {
	if by == SortByName {
		return a.Title == b.Title
	}
	return parseUpdatedAt(a.UpdatedAt).Equal(parseUpdatedAt(b.UpdatedAt))
}

// parseUpdatedAt parses a repository timestamp, tolerating a date-only form.
// Unparseable values sort as the zero time.
func parseUpdatedAt(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t
	}
	return time.Time{}
}

func filterSlice(mods []domain.Mod, keep func(domain.Mod) bool) []domain.Mod {
	out := mods[:0:0]
	for _, m := range mods {
		if keep(m) {
			out = append(out, m)
		}
	}
	return out
}

// containsFold reports whether any value in list contains s
// case-insensitively.
func containsFold(list []string, s string) bool {
	lower := strings.ToLower(s)
	for _, v := range list {
		if strings.Contains(strings.ToLower(v), lower) {
			return true
		}
	}
	return false
}

func uniqueValues(mods []domain.Mod, get func(domain.Mod) []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, m := range mods {
		for _, v := range get(m) {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}
