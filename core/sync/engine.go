package sync

import (
	"context"
	"fmt"

	"github.com/Timothykessler87/hardcover-sync-calibre-plugin/core/catalog"
	"github.com/Timothykessler87/hardcover-sync-calibre-plugin/core/hardcover"
	"github.com/Timothykessler87/hardcover-sync-calibre-plugin/core/utils"

	"go.uber.org/zap"
)

// Engine orchestrates one reconciliation batch: snapshot fetch, per-book
// compare, per-book search/create/mark-owned and result aggregation.
type Engine struct {
	remote Remote
	store  catalog.Store
	logger *zap.Logger
	opts   Options
}

// NewEngine creates a reconciliation engine.
func NewEngine(remote Remote, store catalog.Store, logger *zap.Logger, opts Options) *Engine {
	return &Engine{
		remote: remote,
		store:  store,
		logger: logger,
		opts:   opts,
	}
}

// queued is a book that passed the compare phase and needs remote calls.
type queued struct {
	book *catalog.Book
	isbn string
}

// Run executes the full batch for the given local book IDs.
//
// It always returns the accumulated Result. The error is non-nil only when
// the run loop itself failed (a programming defect, not an expected remote
// condition); expected failures are counted per book and never abort the run.
func (e *Engine) Run(ctx context.Context, bookIDs []int64, sink ProgressSink) (result *Result, err error) {
	if sink == nil {
		sink = nopSink{}
	}
	result = &Result{}

	// Failed is reachable from any state; an escaping panic is the only
	// fatal-to-the-run condition.
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Sync run failed", zap.Any("panic", r))
			result.ErrorDetails = append(result.ErrorDetails, fmt.Sprintf("Sync run failed: %v", r))
			sink.SetState(StateFailed)
			err = fmt.Errorf("sync run failed: %v", r)
		}
	}()

	snapshot := e.fetchSnapshot(ctx, sink, result)
	queue := e.compare(ctx, bookIDs, snapshot, sink, result)
	e.process(ctx, queue, snapshot, sink, result)

	sink.SetState(StateDone)
	sink.SetProgress(100)
	sink.SetStatus("Sync completed!")
	e.logger.Info("Sync run finished",
		zap.Int("added", result.Added),
		zap.Int("skipped", result.SkippedAlreadyOwned),
		zap.Int("created", result.Created),
		zap.Int("errors", result.Errors))

	return result, nil
}

// fetchSnapshot loads the owned list, degrading to an empty snapshot when
// the fetch fails. A snapshot failure never aborts the run.
func (e *Engine) fetchSnapshot(ctx context.Context, sink ProgressSink, result *Result) map[string]hardcover.OwnedBook {
	sink.SetState(StateFetchingSnapshot)
	sink.SetStatus("Fetching your current Hardcover library...")

	snapshot, err := e.remote.FetchOwnedSnapshot(ctx)
	if err != nil {
		e.logger.Warn("Owned snapshot fetch failed, continuing with empty snapshot", zap.Error(err))
		result.ErrorDetails = append(result.ErrorDetails, fmt.Sprintf("Failed to get owned books: %v", err))
		snapshot = map[string]hardcover.OwnedBook{}
	}
	result.ExistingOwnedCount = len(snapshot)

	return snapshot
}

// compare matches every local book against the snapshot without remote
// calls, enqueueing the ones that need processing. Progress budget 0-20%.
func (e *Engine) compare(ctx context.Context, bookIDs []int64, snapshot map[string]hardcover.OwnedBook, sink ProgressSink, result *Result) []queued {
	sink.SetState(StateComparing)
	sink.SetStatus("Comparing with your Calibre library...")

	var queue []queued
	total := len(bookIDs)
	for i, id := range bookIDs {
		if total > 0 {
			sink.SetProgress(i * 20 / total)
		}

		book, err := e.store.GetMetadata(ctx, id)
		if err != nil {
			result.addError(fmt.Sprintf("Failed to read book %d: %v", id, err))
			continue
		}

		title := book.Title
		if title == "" {
			title = "Unknown Title"
			book.Title = title
		}

		if matchID := AlreadyOwned(title, book.Authors, book.ISBN, snapshot); matchID != "" {
			e.logger.Debug("Book already owned",
				zap.String("title", title),
				zap.String("remote_id", matchID))
			result.SkippedAlreadyOwned++
			continue
		}

		queue = append(queue, queued{book: book, isbn: book.ISBN})
	}

	return queue
}

// process resolves each queued book remotely: search by ISBN then title,
// create when nothing is found, and mark the resolved ID owned. Progress
// budget 20-100%, proportional to queue position.
func (e *Engine) process(ctx context.Context, queue []queued, snapshot map[string]hardcover.OwnedBook, sink ProgressSink, result *Result) {
	sink.SetState(StateProcessing)
	sink.SetStatus("Processing new books...")

	for i, item := range queue {
		sink.SetProgress(20 + i*80/len(queue))
		sink.SetStatus(fmt.Sprintf("Processing %q (%d/%d)", item.book.Title, i+1, len(queue)))

		e.processOne(ctx, item, snapshot, result)
	}
}

// processOne handles a single queued book. Any error or panic is contained
// to this book; subsequent books always keep processing.
func (e *Engine) processOne(ctx context.Context, item queued, snapshot map[string]hardcover.OwnedBook, result *Result) {
	title := item.book.Title

	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Book processing panicked",
				zap.String("title", title),
				zap.Any("panic", r))
			result.addError(fmt.Sprintf("Error processing '%s': %v", title, r))
		}
	}()

	// A book marked owned earlier in this run may have synthesized a
	// snapshot entry matching this one; skip instead of re-creating.
	if matchID := AlreadyOwned(title, item.book.Authors, item.isbn, snapshot); matchID != "" {
		e.logger.Debug("Book resolved earlier in this run",
			zap.String("title", title),
			zap.String("remote_id", matchID))
		result.SkippedAlreadyOwned++
		return
	}

	// ISBN search is more precise; fall back to title search.
	var candidates []hardcover.SearchCandidate
	if item.isbn != "" {
		candidates = e.remote.SearchByISBN(ctx, item.isbn)
	}
	if len(candidates) == 0 {
		candidates = e.remote.SearchByTitle(ctx, title)
	}

	var remoteID string
	if len(candidates) > 0 {
		// First candidate wins; no additional ranking.
		remoteID = candidates[0].ID
	} else {
		if e.opts.DryRun {
			e.logger.Info("Dry run: would create book", zap.String("title", title))
			result.ErrorDetails = append(result.ErrorDetails, fmt.Sprintf("[dry-run] would create '%s'", title))
			return
		}
		remoteID = e.remote.CreateBook(ctx, newBookPayload(item.book))
		if remoteID == "" {
			result.addError(fmt.Sprintf("Failed to create book: %s", title))
			return
		}
		result.Created++
	}

	if e.opts.DryRun {
		e.logger.Info("Dry run: would mark owned",
			zap.String("title", title),
			zap.String("remote_id", remoteID))
		result.ErrorDetails = append(result.ErrorDetails, fmt.Sprintf("[dry-run] would mark '%s' owned", title))
		return
	}

	if !e.remote.MarkOwned(ctx, remoteID) {
		result.addError(fmt.Sprintf("Failed to add '%s' to owned list", title))
		return
	}
	result.Added++

	// Synthesize a snapshot entry so a later book in this run matching the
	// same title or ISBN is recognized as already owned.
	isbns := make(map[string]struct{})
	if clean := utils.NormalizeISBN(item.isbn); clean != "" {
		isbns[clean] = struct{}{}
	}
	snapshot[remoteID] = hardcover.OwnedBook{
		ID:      remoteID,
		Title:   utils.NormalizeTitle(title),
		Authors: item.book.Authors,
		ISBNs:   isbns,
	}
}

// newBookPayload maps local metadata to the creation payload.
func newBookPayload(book *catalog.Book) hardcover.NewBook {
	isbn10, isbn13 := utils.ISBNVariants(book.ISBN)

	releaseDate := ""
	if book.PubDate != nil {
		releaseDate = book.PubDate.Format("2006-01-02")
	}

	return hardcover.NewBook{
		Title:       book.Title,
		Description: book.Description,
		Publisher:   book.Publisher,
		ReleaseDate: releaseDate,
		ISBN10:      isbn10,
		ISBN13:      isbn13,
	}
}
