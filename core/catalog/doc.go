// Package catalog handles read access to the local Calibre library.
//
// Calibre stores its library metadata in a SQLite file (metadata.db). This
// package provides a wrapper around GORM to open that file read-only and a
// Store interface that exposes the small query surface the sync engine needs:
// listing book IDs and reading per-book metadata.
//
// # Store Interface
//
// The Store interface abstracts the library so the engine can be tested
// without a Calibre installation. Per-book read failures are returned as
// errors and treated as recoverable by the engine (the book is counted as an
// error and skipped, the run continues).
//
// # Schema
//
// The reader joins the Calibre core tables:
//   - books: id, title, pubdate
//   - authors via books_authors_link (ordered by link id to preserve
//     Calibre's author ordering)
//   - identifiers: type='isbn'
//   - comments: long description
//   - publishers via books_publishers_link
//
// # Usage
//
//	db, err := catalog.Connect(cfg)
//	store := catalog.NewLibrary(db)
//	ids, err := store.AllIDs(ctx)
package catalog
