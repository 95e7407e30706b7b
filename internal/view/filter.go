// Package view holds the pure derived-state helpers shared by the tabs:
// filtering, category options, multi-selection, optimistic updates and
// modal dialog state.
package view

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// AllCategories is the label of the "no category filter" option.
const AllCategories = "전체 카테고리"

var fold = cases.Fold()

// Filter narrows a list by a free-text query and an exact category. Both
// constraints must hold. An empty query or category matches everything.
type Filter[T any] struct {
	Query    string
	Category string
	// Fields returns the searchable text of an item.
	Fields func(T) []string
	// CategoryOf returns the item's category. Nil disables category matching.
	CategoryOf func(T) string
}

func (f Filter[T]) Match(item T) bool {
	if f.Category != "" && f.CategoryOf != nil && f.CategoryOf(item) != f.Category {
		return false
	}
	if f.Query == "" || f.Fields == nil {
		return true
	}
	q := fold.String(f.Query)
	for _, field := range f.Fields(item) {
		if strings.Contains(fold.String(field), q) {
			return true
		}
	}
	return false
}

// Apply returns the matching items in their original order. The input is
// not modified.
func (f Filter[T]) Apply(items []T) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if f.Match(item) {
			out = append(out, item)
		}
	}
	return out
}

// Categories returns the distinct non-empty categories, sorted.
func Categories[T any](items []T, categoryOf func(T) string) []string {
	seen := make(map[string]struct{}, len(items))
	out := []string{}
	for _, item := range items {
		c := categoryOf(item)
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// CategoryOptions prepends the "all" option (empty value) to the categories.
func CategoryOptions(categories []string) []Option {
	opts := make([]Option, 0, len(categories)+1)
	opts = append(opts, Option{Value: "", Label: AllCategories})
	for _, c := range categories {
		opts = append(opts, Option{Value: c, Label: c})
	}
	return opts
}
