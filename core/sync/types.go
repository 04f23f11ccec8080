package sync

import (
	"context"
	"fmt"
	"strings"

	"github.com/Timothykessler87/hardcover-sync-calibre-plugin/core/hardcover"
)

// State is the engine's run phase.
type State string

const (
	StateIdle             State = "idle"
	StateFetchingSnapshot State = "fetching_snapshot"
	StateComparing        State = "comparing"
	StateProcessing       State = "processing"
	StateDone             State = "done"
	StateFailed           State = "failed"
)

// Remote is the Hardcover operation surface the engine depends on.
// Implemented by *hardcover.Client.
type Remote interface {
	FetchOwnedSnapshot(ctx context.Context) (map[string]hardcover.OwnedBook, error)
	SearchByISBN(ctx context.Context, isbn string) []hardcover.SearchCandidate
	SearchByTitle(ctx context.Context, title string) []hardcover.SearchCandidate
	MarkOwned(ctx context.Context, bookID string) bool
	CreateBook(ctx context.Context, book hardcover.NewBook) string
}

// ProgressSink receives state, progress and status updates from a running
// engine. Updates arrive at phase transitions and per processed book.
type ProgressSink interface {
	SetState(state State)
	SetProgress(percent int)
	SetStatus(status string)
}

// nopSink discards updates; used when no caller is observing.
type nopSink struct{}

func (nopSink) SetState(State)   {}
func (nopSink) SetProgress(int)  {}
func (nopSink) SetStatus(string) {}

// Options controls a sync run.
type Options struct {
	// DryRun resolves matches and logs decisions without issuing create or
	// mark-owned mutations.
	DryRun bool `mapstructure:"dry_run" default:"false"`
	// OwnedOnly is persisted configuration carried for compatibility with
	// the original plugin settings; it does not gate engine behavior.
	OwnedOnly bool `mapstructure:"owned_only" default:"false"`
}

// errorPreviewLimit bounds how many error details the summary prints.
const errorPreviewLimit = 3

// Result accumulates the outcome of one sync run. It is written by exactly
// one engine run and read by the caller only after completion.
type Result struct {
	// Added counts books successfully marked owned this run.
	Added int `json:"added"`
	// SkippedAlreadyOwned counts books matched against the snapshot.
	SkippedAlreadyOwned int `json:"skipped_already_owned"`
	// Created counts books newly created on Hardcover this run.
	Created int `json:"created"`
	// ExistingOwnedCount is the snapshot size at the start of the run.
	ExistingOwnedCount int `json:"existing_owned_count"`
	// Errors counts books that failed.
	Errors int `json:"errors"`
	// ErrorDetails holds one human-readable line per failure, in order.
	ErrorDetails []string `json:"error_details"`
}

// addError records one failed outcome.
func (r *Result) addError(detail string) {
	r.Errors++
	r.ErrorDetails = append(r.ErrorDetails, detail)
}

// Summary renders the final counts plus a bounded preview of error details.
func (r *Result) Summary(totalBooks int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Sync completed!\n\n")
	fmt.Fprintf(&b, "Calibre library: %d books\n", totalBooks)
	fmt.Fprintf(&b, "Already owned on Hardcover: %d books\n\n", r.ExistingOwnedCount)
	fmt.Fprintf(&b, "Added to owned: %d\n", r.Added)
	fmt.Fprintf(&b, "Skipped (already owned): %d\n", r.SkippedAlreadyOwned)
	fmt.Fprintf(&b, "New books created: %d\n", r.Created)
	fmt.Fprintf(&b, "Errors: %d", r.Errors)

	if len(r.ErrorDetails) > 0 {
		preview := r.ErrorDetails
		if len(preview) > errorPreviewLimit {
			preview = preview[:errorPreviewLimit]
		}
		fmt.Fprintf(&b, "\n\nFirst few errors:\n%s", strings.Join(preview, "\n"))
		if omitted := len(r.ErrorDetails) - errorPreviewLimit; omitted > 0 {
			fmt.Fprintf(&b, "\n... and %d more", omitted)
		}
	}

	return b.String()
}
