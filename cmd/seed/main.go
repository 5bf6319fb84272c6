// Command seed fills the database with demo data.
package main

import (
	"flag"
	"log"

	"speaksfer/internal/config"
	"speaksfer/internal/database"
	"speaksfer/internal/middleware"
	"speaksfer/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 30, "Number of users to create")
	numArticles := flag.Int("articles", 100, "Number of articles to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	fixture := flag.String("fixture", "", "Load a YAML fixture instead of random data")
	fast := flag.Bool("fast", false, "Use the minimum bcrypt cost")
	dryRun := flag.Bool("dry-run", false, "Build rows without writing them")
	flag.Parse()

	log.Println("🌱 Database Seeder")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	middleware.Logger = middleware.NewLogger(cfg.Env)

	if cfg.IsProduction() {
		log.Fatal("❌ Refusing to seed a production database")
	}

	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to migrate: %v", err)
	}

	s := seed.NewSeeder(db, seed.Options{SkipBcrypt: *fast, DryRun: *dryRun})

	if *shouldClean && !*dryRun {
		if err := s.ClearAll(); err != nil {
			log.Fatalf("❌ Cleanup failed: %v", err)
		}
	}

	var sum *seed.Summary
	if *fixture != "" {
		fx, ferr := seed.LoadFixture(*fixture)
		if ferr != nil {
			log.Fatalf("❌ %v", ferr)
		}
		sum, err = s.ApplyFixture(fx)
	} else {
		sum, err = s.Run(*numUsers, *numArticles)
	}
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Printf("✨ Done: %d users, %d articles, %d comments, %d follows", sum.Users, sum.Articles, sum.Comments, sum.Follows)
	log.Printf("📧 All seeded users have the password: %s", seed.DefaultPassword)
}
