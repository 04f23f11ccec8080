package sync

import (
	"sort"
	"strings"

	"github.com/Timothykessler87/hardcover-sync-calibre-plugin/core/hardcover"
	"github.com/Timothykessler87/hardcover-sync-calibre-plugin/core/utils"
)

// AlreadyOwned checks whether a local book matches an entry of the owned
// snapshot, returning the matching remote ID or "" for no match.
//
// Priority order, first match wins:
//  1. Normalized ISBN present in any entry's ISBN set.
//  2. Normalized titles equal or one contained in the other. A title match
//     alone suffices when either side has no author data; when both sides
//     have authors, at least one pair must overlap by substring containment,
//     otherwise checking continues with the next entry.
//
// Pure function, no I/O. Entries are visited in sorted-key order so the
// tie-break between multiple satisfying entries is stable for a given
// snapshot (which duplicate wins is otherwise unspecified).
func AlreadyOwned(title string, authors []string, isbn string, snapshot map[string]hardcover.OwnedBook) string {
	cleanISBN := utils.NormalizeISBN(isbn)
	cleanTitle := utils.NormalizeTitle(title)

	keys := make([]string, 0, len(snapshot))
	for id := range snapshot {
		keys = append(keys, id)
	}
	sort.Strings(keys)

	// ISBN is the most reliable signal; it wins over any title match.
	if cleanISBN != "" {
		for _, id := range keys {
			if _, ok := snapshot[id].ISBNs[cleanISBN]; ok {
				return id
			}
		}
	}

	if cleanTitle == "" {
		return ""
	}

	for _, id := range keys {
		entry := snapshot[id]
		if entry.Title == "" {
			continue
		}
		if !titlesMatch(cleanTitle, entry.Title) {
			continue
		}

		// A fuzzy title hit needs author confirmation when both sides
		// carry authors.
		if len(authors) > 0 && len(entry.Authors) > 0 {
			if authorsOverlap(authors, entry.Authors) {
				return id
			}
			continue
		}

		return id
	}

	return ""
}

// titlesMatch reports equality or substring containment in either direction.
// The containment rule is a deliberate behavior-parity heuristic; it can
// match "Dune" against "Dune Messiah".
func titlesMatch(a, b string) bool {
	return a == b || strings.Contains(a, b) || strings.Contains(b, a)
}

// authorsOverlap reports whether any local/remote author pair overlaps by
// substring containment after normalization.
func authorsOverlap(local, remote []string) bool {
	for _, l := range local {
		cl := utils.NormalizeAuthor(l)
		if cl == "" {
			continue
		}
		for _, r := range remote {
			cr := utils.NormalizeAuthor(r)
			if cr == "" {
				continue
			}
			if strings.Contains(cl, cr) || strings.Contains(cr, cl) {
				return true
			}
		}
	}
	return false
}
