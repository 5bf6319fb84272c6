package seed

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"speaksfer/internal/models"
)

// Fixture is a hand-written data set, typically loaded from YAML:
//
//	users:
//	  - username: alice
//	    email: alice@example.com
//	articles:
//	  - author: alice
//	    title: Hello
//	    body: First post
//	follows:
//	  - follower: bob
//	    following: alice
type Fixture struct {
	Users    []FixtureUser    `yaml:"users"`
	Articles []FixtureArticle `yaml:"articles"`
	Follows  []FixtureFollow  `yaml:"follows"`
}

type FixtureUser struct {
	Username string `yaml:"username"`
	Email    string `yaml:"email"`
	Bio      string `yaml:"bio"`
}

type FixtureArticle struct {
	Author      string `yaml:"author"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Body        string `yaml:"body"`
}

type FixtureFollow struct {
	Follower  string `yaml:"follower"`
	Following string `yaml:"following"`
}

// LoadFixture reads and parses a YAML fixture file.
func LoadFixture(path string) (*Fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	return ParseFixture(raw)
}

// ParseFixture parses YAML fixture data. Unknown keys are rejected.
func ParseFixture(raw []byte) (*Fixture, error) {
	var fx Fixture
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	seen := make(map[string]bool, len(fx.Users))
	for i, u := range fx.Users {
		if u.Username == "" || u.Email == "" {
			return nil, fmt.Errorf("fixture user %d: username and email are required", i)
		}
		if seen[u.Username] {
			return nil, fmt.Errorf("fixture user %q declared twice", u.Username)
		}
		seen[u.Username] = true
	}
	for i, a := range fx.Articles {
		if !seen[a.Author] {
			return nil, fmt.Errorf("fixture article %d: unknown author %q", i, a.Author)
		}
		if a.Title == "" || a.Body == "" {
			return nil, fmt.Errorf("fixture article %d: title and body are required", i)
		}
	}
	for i, f := range fx.Follows {
		if !seen[f.Follower] || !seen[f.Following] {
			return nil, fmt.Errorf("fixture follow %d: unknown user", i)
		}
	}
	return &fx, nil
}

// ApplyFixture persists fx. Users get DefaultPassword and are verified.
func (s *Seeder) ApplyFixture(fx *Fixture) (*Summary, error) {
	sum := &Summary{}
	byName := make(map[string]*models.User, len(fx.Users))
	for _, fu := range fx.Users {
		u, err := s.factory.CreateUser(func(u *models.User) {
			u.Username = fu.Username
			u.Email = fu.Email
			u.Profile = &models.Profile{Bio: fu.Bio}
		})
		if err != nil {
			return sum, fmt.Errorf("fixture user %q: %w", fu.Username, err)
		}
		byName[fu.Username] = u
		sum.Users++
	}
	for _, fa := range fx.Articles {
		if _, err := s.factory.CreateArticle(byName[fa.Author], func(a *models.Article) {
			a.Title = fa.Title
			a.Description = fa.Description
			a.Body = fa.Body
		}); err != nil {
			return sum, fmt.Errorf("fixture article %q: %w", fa.Title, err)
		}
		sum.Articles++
	}
	for _, ff := range fx.Follows {
		if err := s.factory.CreateFollow(byName[ff.Follower], byName[ff.Following]); err != nil {
			return sum, fmt.Errorf("fixture follow %s->%s: %w", ff.Follower, ff.Following, err)
		}
		sum.Follows++
	}
	return sum, nil
}
