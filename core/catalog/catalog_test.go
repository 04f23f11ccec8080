package catalog

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newMockLibrary wires a sqlmock-backed connection through the sqlite dialector.
func newMockLibrary(t *testing.T) (*Library, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	// The sqlite dialector probes the engine version during Initialize.
	mock.ExpectQuery(regexp.QuoteMeta("select sqlite_version()")).
		WillReturnRows(sqlmock.NewRows([]string{"sqlite_version()"}).AddRow("3.45.1"))

	db, err := gorm.Open(sqlite.Dialector{Conn: sqlDB}, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return NewLibrary(db), mock
}

func TestAllIDs(t *testing.T) {
	lib, mock := newMockLibrary(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id FROM books ORDER BY id")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2).AddRow(7))

	ids, err := lib.AllIDs(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 7}, ids)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetMetadata(t *testing.T) {
	t.Run("Full metadata", func(t *testing.T) {
		lib, mock := newMockLibrary(t)

		pub := time.Date(1965, 8, 1, 0, 0, 0, 0, time.UTC)
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, pubdate FROM books WHERE id = ?")).
			WithArgs(int64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "title", "pubdate"}).
				AddRow(5, "Dune", pub))
		mock.ExpectQuery("SELECT authors.name FROM authors").
			WithArgs(int64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"name"}).
				AddRow("Frank Herbert"))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT val FROM identifiers WHERE book = ? AND type = 'isbn'")).
			WithArgs(int64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"val"}).
				AddRow("978-0441013593"))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT text FROM comments WHERE book = ?")).
			WithArgs(int64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"text"}).
				AddRow("A desert planet."))
		mock.ExpectQuery("SELECT publishers.name FROM publishers").
			WithArgs(int64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"name"}).
				AddRow("Chilton Books"))

		book, err := lib.GetMetadata(context.Background(), 5)
		assert.NoError(t, err)
		assert.Equal(t, "Dune", book.Title)
		assert.Equal(t, []string{"Frank Herbert"}, book.Authors)
		assert.Equal(t, "978-0441013593", book.ISBN)
		assert.Equal(t, "A desert planet.", book.Description)
		assert.Equal(t, "Chilton Books", book.Publisher)
		require.NotNil(t, book.PubDate)
		assert.Equal(t, 1965, book.PubDate.Year())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Missing book", func(t *testing.T) {
		lib, mock := newMockLibrary(t)

		mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, pubdate FROM books WHERE id = ?")).
			WithArgs(int64(99)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "title", "pubdate"}))

		book, err := lib.GetMetadata(context.Background(), 99)
		assert.Error(t, err)
		assert.Nil(t, book)
		assert.Contains(t, err.Error(), "not found")
	})

	t.Run("No isbn or extras", func(t *testing.T) {
		lib, mock := newMockLibrary(t)

		mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, pubdate FROM books WHERE id = ?")).
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows([]string{"id", "title", "pubdate"}).
				AddRow(3, "Untitled Draft", nil))
		mock.ExpectQuery("SELECT authors.name FROM authors").
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows([]string{"name"}))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT val FROM identifiers")).
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows([]string{"val"}))
		mock.ExpectQuery(regexp.QuoteMeta("SELECT text FROM comments")).
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows([]string{"text"}))
		mock.ExpectQuery("SELECT publishers.name FROM publishers").
			WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows([]string{"name"}))

		book, err := lib.GetMetadata(context.Background(), 3)
		assert.NoError(t, err)
		assert.Empty(t, book.ISBN)
		assert.Empty(t, book.Authors)
		assert.Nil(t, book.PubDate)
	})
}

func TestConnectInvalidPath(t *testing.T) {
	cfg := Config{
		Path:     "/nonexistent/dir/metadata.db",
		ReadOnly: true,
	}

	// Read-only open of a missing file must fail rather than create it.
	db, err := Connect(cfg)
	assert.Error(t, err)
	assert.Nil(t, db)
}
