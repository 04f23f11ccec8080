package catalog

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Book is the local metadata for a single Calibre book.
// Immutable for the duration of a sync run.
type Book struct {
	// ID is the Calibre book ID.
	ID int64
	// Title is the book title as stored in Calibre.
	Title string
	// Authors is the ordered list of author names.
	Authors []string
	// ISBN is the raw isbn identifier if Calibre has one, possibly with
	// separators. Empty when the book has no isbn identifier.
	ISBN string
	// Description is the Calibre comments field.
	Description string
	// Publisher is the linked publisher name, if any.
	Publisher string
	// PubDate is the publication date, nil when Calibre has none.
	PubDate *time.Time
}

// Store is the query surface the sync engine needs from the local library.
type Store interface {
	// AllIDs returns every book ID in the library, in ascending order.
	AllIDs(ctx context.Context) ([]int64, error)
	// GetMetadata reads the metadata for a single book.
	GetMetadata(ctx context.Context, id int64) (*Book, error)
}

// Connect opens the Calibre metadata database.
// It returns a *gorm.DB connection or an error if the open or ping fails.
func Connect(cfg Config) (*gorm.DB, error) {
	dsn := cfg.Path
	if cfg.ReadOnly {
		// SQLite URI form so the library file is never locked for writing.
		dsn = fmt.Sprintf("file:%s?mode=ro", cfg.Path)
	}

	// Suppress GORM logging; the application logger reports failures.
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}

	db, err := gorm.Open(sqlite.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to open calibre library: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	// A single file-backed connection; no pool needed beyond safety limits.
	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetMaxOpenConns(4)
	sqlDB.SetConnMaxLifetime(time.Hour)

	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeout)*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping calibre library: %w", err)
	}

	return db, nil
}

// Library is the GORM-backed Store implementation over metadata.db.
type Library struct {
	db *gorm.DB
}

// NewLibrary creates a Store over an open Calibre database connection.
func NewLibrary(db *gorm.DB) *Library {
	return &Library{db: db}
}

// AllIDs returns every book ID in the library in ascending order.
func (l *Library) AllIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := l.db.WithContext(ctx).
		Raw("SELECT id FROM books ORDER BY id").
		Scan(&ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list book ids: %w", err)
	}
	return ids, nil
}

// bookRow is the scan target for the core books query.
type bookRow struct {
	ID      int64
	Title   string
	Pubdate *time.Time
}

// GetMetadata reads title, authors, isbn and extended metadata for one book.
func (l *Library) GetMetadata(ctx context.Context, id int64) (*Book, error) {
	var row bookRow
	res := l.db.WithContext(ctx).
		Raw("SELECT id, title, pubdate FROM books WHERE id = ?", id).
		Scan(&row)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to read book %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("book %d not found in library", id)
	}

	book := &Book{
		ID:      row.ID,
		Title:   row.Title,
		PubDate: row.Pubdate,
	}

	// Author link rows carry Calibre's display order.
	err := l.db.WithContext(ctx).
		Raw(`SELECT authors.name FROM authors
			JOIN books_authors_link ON books_authors_link.author = authors.id
			WHERE books_authors_link.book = ?
			ORDER BY books_authors_link.id`, id).
		Scan(&book.Authors).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read authors for book %d: %w", id, err)
	}

	var isbn string
	err = l.db.WithContext(ctx).
		Raw("SELECT val FROM identifiers WHERE book = ? AND type = 'isbn'", id).
		Scan(&isbn).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read identifiers for book %d: %w", id, err)
	}
	book.ISBN = isbn

	var description string
	err = l.db.WithContext(ctx).
		Raw("SELECT text FROM comments WHERE book = ?", id).
		Scan(&description).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read comments for book %d: %w", id, err)
	}
	book.Description = description

	var publisher string
	err = l.db.WithContext(ctx).
		Raw(`SELECT publishers.name FROM publishers
			JOIN books_publishers_link ON books_publishers_link.publisher = publishers.id
			WHERE books_publishers_link.book = ?`, id).
		Scan(&publisher).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read publisher for book %d: %w", id, err)
	}
	book.Publisher = publisher

	return book, nil
}
