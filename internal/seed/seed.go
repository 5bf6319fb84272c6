package seed

import (
	"fmt"
	"log"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"

	"speaksfer/internal/database"
	"speaksfer/internal/models"
)

// Summary counts what a seeding run created.
type Summary struct {
	Users    int
	Articles int
	Comments int
	Follows  int
}

// Seeder populates a database through a Factory.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder returns a Seeder writing to db.
func NewSeeder(db *gorm.DB, opts Options) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db, opts)}
}

// ClearAll deletes every row from the application tables, children first.
func (s *Seeder) ClearAll() error {
	tables := database.PersistentModels()
	for i := len(tables) - 1; i >= 0; i-- {
		if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(tables[i]).Error; err != nil {
			return fmt.Errorf("clear %T: %w", tables[i], err)
		}
	}
	log.Println("✓ existing data cleared")
	return nil
}

// Run creates numUsers accounts with a random follow mesh, then numArticles
// articles with comments, ratings, favourites and bookmarks from other users.
func (s *Seeder) Run(numUsers, numArticles int) (*Summary, error) {
	sum := &Summary{}
	if numUsers <= 0 {
		return sum, nil
	}

	users := make([]*models.User, 0, numUsers)
	for i := 0; i < numUsers; i++ {
		u, err := s.factory.CreateUser()
		if err != nil {
			return sum, fmt.Errorf("create user: %w", err)
		}
		users = append(users, u)
	}
	sum.Users = len(users)
	log.Printf("✓ %d users created", sum.Users)

	for _, u := range users {
		for _, target := range pick(users, gofakeit.Number(0, min(5, len(users)-1))) {
			if target.ID == u.ID {
				continue
			}
			if err := s.factory.CreateFollow(u, target); err != nil {
				return sum, fmt.Errorf("create follow: %w", err)
			}
			sum.Follows++
		}
	}
	log.Printf("✓ %d follows created", sum.Follows)

	for i := 0; i < numArticles; i++ {
		author := users[gofakeit.Number(0, len(users)-1)]
		article, err := s.factory.CreateArticle(author)
		if err != nil {
			return sum, fmt.Errorf("create article: %w", err)
		}
		sum.Articles++

		for _, reader := range pick(users, gofakeit.Number(0, min(4, len(users)))) {
			if reader.ID == author.ID {
				continue
			}
			if _, err := s.factory.CreateComment(reader, article); err != nil {
				return sum, fmt.Errorf("create comment: %w", err)
			}
			sum.Comments++
			if err := s.factory.CreateRating(reader, article); err != nil {
				return sum, fmt.Errorf("create rating: %w", err)
			}
			if gofakeit.Bool() {
				if err := s.factory.CreateFavourite(reader, article); err != nil {
					return sum, fmt.Errorf("create favourite: %w", err)
				}
			}
			if gofakeit.Number(0, 3) == 0 {
				if err := s.factory.CreateBookmark(reader, article); err != nil {
					return sum, fmt.Errorf("create bookmark: %w", err)
				}
			}
		}
	}
	log.Printf("✓ %d articles with %d comments created", sum.Articles, sum.Comments)
	return sum, nil
}

// pick returns n distinct users in random order.
func pick(users []*models.User, n int) []*models.User {
	if n <= 0 {
		return nil
	}
	shuffled := make([]*models.User, len(users))
	copy(shuffled, users)
	gofakeit.ShuffleAnySlice(shuffled)
	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}
