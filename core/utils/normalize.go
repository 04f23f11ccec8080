package utils

import "strings"

// NormalizeISBN strips hyphens and spaces from an ISBN so that
// 10-digit and 13-digit variants compare by their digits only.
// Returns "" for an empty or separator-only input.
func NormalizeISBN(isbn string) string {
	isbn = strings.ReplaceAll(isbn, "-", "")
	isbn = strings.ReplaceAll(isbn, " ", "")
	return strings.TrimSpace(isbn)
}

// NormalizeTitle lowercases and trims a title for fuzzy comparison.
func NormalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// NormalizeAuthor lowercases and trims an author name for comparison.
// Author names on the remote side are free-form, so matching is done on
// the normalized form only.
func NormalizeAuthor(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// ISBNVariants splits a normalized ISBN into its 10-digit and 13-digit
// representations for search queries. Either value may be empty when the
// input does not have that length.
func ISBNVariants(isbn string) (isbn10, isbn13 string) {
	clean := NormalizeISBN(isbn)
	switch len(clean) {
	case 10:
		return clean, ""
	case 13:
		return "", clean
	default:
		return "", ""
	}
}
