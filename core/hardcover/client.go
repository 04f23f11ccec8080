package hardcover

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Timothykessler87/hardcover-sync-calibre-plugin/core/utils"

	"go.uber.org/zap"
)

const userAgent = "hardcover-sync/1.0"

// Client issues authenticated requests against the Hardcover GraphQL API.
// All requests from one instance share a single rate-limit clock; calls are
// expected to be strictly serial.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger

	mu          sync.Mutex
	lastRequest time.Time

	// Injectable for throttle tests.
	now   func() time.Time
	sleep func(time.Duration)
}

// NewClient creates a Hardcover API client from the configuration.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}
	timeoutDuration := time.Duration(timeout) * time.Second

	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.RateLimitDelay <= 0 {
		cfg.RateLimitDelay = DefaultRateLimitDelay
	}

	// Strict timeouts on every phase of the request so a stalled remote
	// fails a single call instead of hanging the worker.
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   timeoutDuration,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   timeoutDuration,
		ResponseHeaderTimeout: timeoutDuration,
		ExpectContinueTimeout: 1 * time.Second,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
	}

	return &Client{
		cfg: cfg,
		http: &http.Client{
			Transport: transport,
			Timeout:   timeoutDuration,
		},
		logger: logger,
		now:    time.Now,
		sleep:  time.Sleep,
	}
}

// throttle blocks until at least RateLimitDelay seconds have passed since the
// previous request issued by this client instance.
func (c *Client) throttle() {
	c.mu.Lock()
	defer c.mu.Unlock()

	delay := time.Duration(c.cfg.RateLimitDelay * float64(time.Second))
	if !c.lastRequest.IsZero() {
		elapsed := c.now().Sub(c.lastRequest)
		if elapsed < delay {
			c.sleep(delay - elapsed)
		}
	}
	c.lastRequest = c.now()
}

// graphqlError is one entry of a GraphQL response errors array.
type graphqlError struct {
	Message string `json:"message"`
}

// runQuery executes a GraphQL document with rate limiting and error
// classification, decoding the data payload into out when non-nil.
func (c *Client) runQuery(ctx context.Context, query string, variables map[string]any, out any) error {
	c.throttle()

	if variables == nil {
		variables = map[string]any{}
	}
	payload, err := json.Marshal(map[string]any{
		"query":     strings.TrimSpace(query),
		"variables": variables,
	})
	if err != nil {
		return &DataError{Err: fmt.Errorf("failed to encode request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return &TransportError{Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.ApiToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &AuthError{Status: resp.StatusCode}
	case resp.StatusCode == http.StatusTooManyRequests:
		return &RateLimitError{Status: resp.StatusCode}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &TransportError{Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Err: err}
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []graphqlError  `json:"errors"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return &DataError{Err: err}
	}

	if len(envelope.Errors) > 0 {
		return &ServiceError{Message: envelope.Errors[0].Message}
	}

	if out != nil && len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return &DataError{Err: err}
		}
	}

	return nil
}

// meEntry is one user record from the me query.
type meEntry struct {
	ID       json.Number `json:"id"`
	Username string      `json:"username"`
	Email    string      `json:"email"`
}

// TestConnection verifies that the configured API token is valid by fetching
// the authenticated user. Returns false on any failure.
func (c *Client) TestConnection(ctx context.Context) bool {
	var data struct {
		Me json.RawMessage `json:"me"`
	}
	if err := c.runQuery(ctx, queryTestConnection, nil, &data); err != nil {
		c.logger.Warn("Connection test failed", zap.Error(err))
		return false
	}

	// The me field is a list on some schema versions and an object on
	// others; accept either.
	var me meEntry
	var list []meEntry
	if err := json.Unmarshal(data.Me, &list); err == nil {
		if len(list) == 0 {
			return false
		}
		me = list[0]
	} else if err := json.Unmarshal(data.Me, &me); err != nil {
		c.logger.Warn("Connection test returned unexpected payload")
		return false
	}

	return me.ID.String() != "" && me.ID.String() != "0" && (me.Username != "" || me.Email != "")
}

// remoteBook is the common nested book shape across search and snapshot
// queries.
type remoteBook struct {
	ID            json.Number `json:"id"`
	Title         string      `json:"title"`
	Slug          string      `json:"slug"`
	Contributions []struct {
		Author struct {
			Name string `json:"name"`
		} `json:"author"`
	} `json:"contributions"`
	Editions []struct {
		ISBN10 string `json:"isbn_10"`
		ISBN13 string `json:"isbn_13"`
	} `json:"editions"`
}

// SearchByTitle performs a case-insensitive substring title search.
// Returns an empty slice on any failure; a failed search never aborts a run.
func (c *Client) SearchByTitle(ctx context.Context, title string) []SearchCandidate {
	var data struct {
		Books []remoteBook `json:"books"`
	}
	variables := map[string]any{"title": "%" + title + "%"}
	if err := c.runQuery(ctx, querySearchByTitle, variables, &data); err != nil {
		c.logger.Warn("Title search failed", zap.String("title", title), zap.Error(err))
		return nil
	}

	candidates := make([]SearchCandidate, 0, len(data.Books))
	for _, b := range data.Books {
		if b.ID.String() == "" {
			continue
		}
		candidates = append(candidates, SearchCandidate{
			ID:    b.ID.String(),
			Title: b.Title,
			Slug:  b.Slug,
		})
	}
	return candidates
}

// SearchByISBN searches editions by 10-digit or 13-digit ISBN and maps the
// matching editions back to their parent books.
// Returns an empty slice on any failure.
func (c *Client) SearchByISBN(ctx context.Context, isbn string) []SearchCandidate {
	isbn10, isbn13 := utils.ISBNVariants(isbn)
	if isbn10 == "" && isbn13 == "" {
		return nil
	}

	var data struct {
		Editions []struct {
			Book *remoteBook `json:"book"`
		} `json:"editions"`
	}
	variables := map[string]any{
		"isbn10": nullable(isbn10),
		"isbn13": nullable(isbn13),
	}
	if err := c.runQuery(ctx, querySearchByISBN, variables, &data); err != nil {
		c.logger.Warn("ISBN search failed", zap.String("isbn", isbn), zap.Error(err))
		return nil
	}

	candidates := make([]SearchCandidate, 0, len(data.Editions))
	for _, e := range data.Editions {
		if e.Book == nil || e.Book.ID.String() == "" {
			continue
		}
		candidates = append(candidates, SearchCandidate{
			ID:    e.Book.ID.String(),
			Title: e.Book.Title,
			Slug:  e.Book.Slug,
		})
	}
	return candidates
}

// FetchOwnedSnapshot fetches the user's owned list with nested author and
// ISBN data, keyed by remote book ID. The error propagates so the engine can
// degrade to an empty snapshot while recording the failure.
func (c *Client) FetchOwnedSnapshot(ctx context.Context) (map[string]OwnedBook, error) {
	var data struct {
		UserBooks []struct {
			BookID json.Number `json:"book_id"`
			Book   *remoteBook `json:"book"`
		} `json:"user_books"`
	}
	if err := c.runQuery(ctx, queryOwnedBooks, nil, &data); err != nil {
		return nil, fmt.Errorf("failed to fetch owned books: %w", err)
	}

	owned := make(map[string]OwnedBook, len(data.UserBooks))
	for _, ub := range data.UserBooks {
		if ub.Book == nil || ub.Book.ID.String() == "" {
			continue
		}
		id := ub.Book.ID.String()

		isbns := make(map[string]struct{})
		for _, e := range ub.Book.Editions {
			if e.ISBN10 != "" {
				isbns[utils.NormalizeISBN(e.ISBN10)] = struct{}{}
			}
			if e.ISBN13 != "" {
				isbns[utils.NormalizeISBN(e.ISBN13)] = struct{}{}
			}
		}

		var authors []string
		for _, contrib := range ub.Book.Contributions {
			if contrib.Author.Name != "" {
				authors = append(authors, contrib.Author.Name)
			}
		}

		owned[id] = OwnedBook{
			ID:      id,
			Title:   utils.NormalizeTitle(ub.Book.Title),
			Authors: authors,
			ISBNs:   isbns,
			Slug:    ub.Book.Slug,
		}
	}

	return owned, nil
}

// MarkOwned flags the given remote book as owned. The mutation is an upsert,
// so marking an already-owned book succeeds silently. Returns false on any
// failure.
func (c *Client) MarkOwned(ctx context.Context, bookID string) bool {
	id, err := strconv.ParseInt(bookID, 10, 64)
	if err != nil {
		c.logger.Warn("Invalid remote book ID", zap.String("book_id", bookID))
		return false
	}

	var data struct {
		Inserted json.RawMessage `json:"insert_user_books_one"`
	}
	variables := map[string]any{"book_id": id}
	if err := c.runQuery(ctx, mutationMarkOwned, variables, &data); err != nil {
		c.logger.Warn("Mark owned failed", zap.String("book_id", bookID), zap.Error(err))
		return false
	}

	return len(data.Inserted) > 0 && string(data.Inserted) != "null"
}

// CreateBook creates a new book with a single edition. Returns the new remote
// ID, or "" when creation fails; a failed creation never aborts a run.
func (c *Client) CreateBook(ctx context.Context, book NewBook) string {
	variables := map[string]any{
		"title":        book.Title,
		"subtitle":     nullable(book.Subtitle),
		"description":  nullable(book.Description),
		"release_date": nullable(book.ReleaseDate),
		"publisher":    nullable(book.Publisher),
		"isbn_10":      nullable(book.ISBN10),
		"isbn_13":      nullable(book.ISBN13),
		"pages":        nullableInt(book.Pages),
	}

	var data struct {
		Inserted *struct {
			ID    json.Number `json:"id"`
			Title string      `json:"title"`
		} `json:"insert_books_one"`
	}
	if err := c.runQuery(ctx, mutationCreateBook, variables, &data); err != nil {
		c.logger.Warn("Book creation failed", zap.String("title", book.Title), zap.Error(err))
		return ""
	}
	if data.Inserted == nil || data.Inserted.ID.String() == "" {
		return ""
	}

	return data.Inserted.ID.String()
}

// nullable maps an empty string to a GraphQL null.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// nullableInt maps a zero value to a GraphQL null.
func nullableInt(n int) any {
	if n <= 0 {
		return nil
	}
	return n
}
