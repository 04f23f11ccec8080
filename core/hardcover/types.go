package hardcover

// OwnedBook is one entry of the user's remote "owned" list, built once per
// sync run from a snapshot and mutated in memory as new books are created
// and marked owned.
type OwnedBook struct {
	// ID is the Hardcover book ID.
	ID string
	// Title is the normalized (lowercased, trimmed) title.
	Title string
	// Authors is the list of contributor names.
	Authors []string
	// ISBNs is the set of normalized (digits only) ISBNs across all
	// editions of this book.
	ISBNs map[string]struct{}
	// Slug is the Hardcover URL slug.
	Slug string
}

// SearchCandidate is an ephemeral result from a remote lookup. It is never
// persisted; the engine only reads the ID of the first candidate.
type SearchCandidate struct {
	// ID is the Hardcover book ID.
	ID string
	// Title is the raw remote title.
	Title string
	// Slug is the Hardcover URL slug.
	Slug string
}

// NewBook is the metadata payload for creating a book on Hardcover.
// Empty or zero fields are sent as GraphQL nulls.
type NewBook struct {
	Title       string
	Subtitle    string
	Description string
	// ReleaseDate is a YYYY-MM-DD date string.
	ReleaseDate string
	Publisher   string
	Pages       int
	ISBN10      string
	ISBN13      string
}
