package shared

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortByName sorts items in place by the string name returns, using locale-aware collation for locale
// (a BCP 47 tag such as "en" or "ga"). Items with equal names keep their relative order.
//
// Unknown or empty locales fall back to English.
func SortByName[T any](items []T, locale string, name func(T) string) {
	tag, err := language.Parse(locale)
	if err != nil || locale == "" {
		tag = language.English
	}

	c := collate.New(tag, collate.IgnoreCase)
	sort.SliceStable(items, func(i, j int) bool {
		return c.CompareString(name(items[i]), name(items[j])) < 0
	})
}
