package repository

import (
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"speaksfer/internal/cache"
	"speaksfer/internal/database"
	"speaksfer/internal/models"
)

// newTestDB returns a migrated in-memory sqlite database. A single connection
// keeps every query on the same in-memory schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	cache.SetClient(nil)

	db, err := gorm.Open(sqlite.Open(":memory:?_foreign_keys=on"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return gormDB, mock
}

func createUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()
	u := &models.User{
		Username: name,
		Email:    fmt.Sprintf("%s@example.com", name),
		Password: "hash",
	}
	require.NoError(t, db.Create(u).Error)
	require.NoError(t, db.Create(&models.Profile{UserID: u.ID}).Error)
	return u
}

func createArticle(t *testing.T, db *gorm.DB, author *models.User, slug string) *models.Article {
	t.Helper()
	a := &models.Article{
		Slug:        slug,
		Title:       slug,
		Body:        "one two three four five",
		ReadingTime: 1,
		AuthorID:    author.ID,
	}
	require.NoError(t, db.Omit("Author").Create(a).Error)
	return a
}
