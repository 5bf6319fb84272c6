package seed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"speaksfer/internal/database"
	"speaksfer/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
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

func count(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

const sampleFixture = `
users:
  - username: alice
    email: alice@example.com
    bio: writes about gardens
  - username: bob
    email: bob@example.com
articles:
  - author: alice
    title: Growing Tomatoes
    description: a short guide
    body: Water them often and give them sun.
follows:
  - follower: bob
    following: alice
`

func TestSeeder_Run(t *testing.T) {
	db := newTestDB(t)
	s := NewSeeder(db, Options{SkipBcrypt: true, MaxDays: 7})

	sum, err := s.Run(6, 10)
	require.NoError(t, err)
	assert.Equal(t, 6, sum.Users)
	assert.Equal(t, 10, sum.Articles)

	assert.Equal(t, int64(6), count(t, db, &models.User{}))
	assert.Equal(t, int64(6), count(t, db, &models.Profile{}))
	assert.Equal(t, int64(10), count(t, db, &models.Article{}))
	assert.Equal(t, int64(sum.Comments), count(t, db, &models.ArticleComment{}))

	var selfFollows int64
	require.NoError(t, db.Model(&models.UserFollowing{}).Where("follower_id = following_id").Count(&selfFollows).Error)
	assert.Zero(t, selfFollows)

	var articles []models.Article
	require.NoError(t, db.Find(&articles).Error)
	for _, a := range articles {
		assert.NotEmpty(t, a.Slug)
		assert.GreaterOrEqual(t, a.ReadingTime, 1)
	}
}

func TestSeeder_ClearAll(t *testing.T) {
	db := newTestDB(t)
	s := NewSeeder(db, Options{SkipBcrypt: true})
	_, err := s.Run(3, 4)
	require.NoError(t, err)

	require.NoError(t, s.ClearAll())
	for _, m := range database.PersistentModels() {
		assert.Zero(t, count(t, db, m), "%T not cleared", m)
	}
}

func TestFactory_DryRunWritesNothing(t *testing.T) {
	db := newTestDB(t)
	f := NewFactory(db, Options{SkipBcrypt: true, DryRun: true})

	u, err := f.CreateUser()
	require.NoError(t, err)
	assert.NotZero(t, u.ID)

	a, err := f.CreateArticle(u)
	require.NoError(t, err)
	assert.NotZero(t, a.ID)

	assert.Zero(t, count(t, db, &models.User{}))
	assert.Zero(t, count(t, db, &models.Article{}))
}

func TestFactory_PasswordIsUsable(t *testing.T) {
	db := newTestDB(t)
	f := NewFactory(db, Options{SkipBcrypt: true})
	u, err := f.CreateUser()
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(DefaultPassword)))
	assert.True(t, u.IsVerified)
}

func TestSanitizeUsername(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "john_doe", sanitizeUsername("john_doe"))
	assert.Equal(t, "johndoe", sanitizeUsername("john.doe!"))
	assert.Equal(t, "user", sanitizeUsername("!!"))
	assert.Len(t, sanitizeUsername("abcdefghijklmnopqrstuvwxyz0123"), 24)
}

func TestLoadFixture_Apply(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleFixture), 0o600))

	fx, err := LoadFixture(path)
	require.NoError(t, err)
	require.Len(t, fx.Users, 2)

	db := newTestDB(t)
	sum, err := NewSeeder(db, Options{SkipBcrypt: true}).ApplyFixture(fx)
	require.NoError(t, err)
	assert.Equal(t, &Summary{Users: 2, Articles: 1, Follows: 1}, sum)

	var article models.Article
	require.NoError(t, db.First(&article).Error)
	assert.Equal(t, "Growing Tomatoes", article.Title)
	assert.Contains(t, article.Slug, "growing-tomatoes-")

	var alice models.User
	require.NoError(t, db.Preload("Profile").Where("username = ?", "alice").First(&alice).Error)
	require.NotNil(t, alice.Profile)
	assert.Equal(t, "writes about gardens", alice.Profile.Bio)
	assert.Equal(t, alice.ID, article.AuthorID)
}

func TestParseFixture_Rejects(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"unknown author": "users:\n  - {username: a1, email: a@x.io}\narticles:\n  - {author: zed, title: T, body: B}\n",
		"duplicate user": "users:\n  - {username: a1, email: a@x.io}\n  - {username: a1, email: b@x.io}\n",
		"missing email":  "users:\n  - {username: a1}\n",
		"unknown key":    "users:\n  - {username: a1, email: a@x.io, role: admin}\n",
		"unknown follow": "users:\n  - {username: a1, email: a@x.io}\nfollows:\n  - {follower: a1, following: ghost}\n",
		"empty body":     "users:\n  - {username: a1, email: a@x.io}\narticles:\n  - {author: a1, title: T}\n",
		"not a yaml map": "- just\n- a list\n",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseFixture([]byte(raw))
			assert.Error(t, err)
		})
	}
}

func TestParseFixture_Empty(t *testing.T) {
	t.Parallel()
	fx, err := ParseFixture(nil)
	require.NoError(t, err)
	assert.Empty(t, fx.Users)
}
