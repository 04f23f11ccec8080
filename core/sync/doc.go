// Package sync implements the reconciliation engine between a local Calibre
// library and the Hardcover.app owned list.
//
// The engine decides, for each local book, whether it already exists remotely
// (by ISBN or fuzzy title/author match against a per-run snapshot), whether it
// must be created, and marks resolved books owned, tolerating partial
// failure across the batch.
//
// # Components
//
//  1. Matcher: AlreadyOwned is a pure, deterministic function that compares
//     one local book against the snapshot. ISBN matches win over title
//     matches; a title match additionally requires author overlap when both
//     sides carry author data.
//
//  2. Engine: runs the batch through the phases FetchingSnapshot → Comparing
//     (progress 0-20%) → Processing (20-100%) → Done. A snapshot fetch
//     failure degrades to an empty snapshot; any error or panic while
//     handling a single book is counted and recorded without stopping the
//     rest of the batch. Per-book isolation is the core failure-handling
//     contract.
//
//  3. Runner: executes one engine run on a background goroutine and exposes
//     polled progress, status and the final result. There is no mid-run
//     cancellation; a run completes or fails as a unit.
//
// # Snapshot Mutation
//
// After a book is successfully marked owned, a synthesized entry is inserted
// into the in-memory snapshot so that a later book in the same run matching
// the same title or ISBN is recognized as already owned instead of being
// created again.
package sync
