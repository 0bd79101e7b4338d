package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mkurosawa/marketplace-backend/internal/config"
	"github.com/mkurosawa/marketplace-backend/internal/db"
	"github.com/mkurosawa/marketplace-backend/internal/model"
	"gorm.io/gorm"
)

type seedListing struct {
	Title       string
	Description string
	Price       uint
	Category    string
	Location    string
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func run() error {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	gdb, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}

	if err := gdb.WithContext(ctx).AutoMigrate(
		&model.User{},
		&model.Listing{},
		&model.Conversation{},
		&model.Message{},
		&model.SiteStats{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	canSeed, err := shouldSeed(ctx, gdb)
	if err != nil {
		return err
	}
	if !canSeed {
		log.Printf("listings already exist; skipping seed (set FORCE_SEED=true to override)")
		return nil
	}

	return gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := buildSeedUsers(cfg.SupportUID)
		for i := range users {
			if err := tx.Create(&users[i]).Error; err != nil {
				return fmt.Errorf("create user %s: %w", users[i].UID, err)
			}
		}
		seller := users[len(users)-1]
		for _, sl := range buildSeedListings() {
			listing := model.Listing{
				Title:       sl.Title,
				Description: sl.Description,
				Price:       sl.Price,
				Category:    sl.Category,
				Location:    sl.Location,
				SellerUID:   seller.UID,
				Active:      true,
				Approved:    true,
			}
			if err := tx.Create(&listing).Error; err != nil {
				return fmt.Errorf("create listing %q: %w", sl.Title, err)
			}
		}
		log.Printf("seeded %d users and %d listings", len(users), len(buildSeedListings()))
		return nil
	})
}

func shouldSeed(ctx context.Context, gdb *gorm.DB) (bool, error) {
	if strings.EqualFold(os.Getenv("FORCE_SEED"), "true") {
		return true, nil
	}
	var n int64
	if err := gdb.WithContext(ctx).Model(&model.Listing{}).Count(&n).Error; err != nil {
		return false, fmt.Errorf("count listings: %w", err)
	}
	return n == 0, nil
}

func buildSeedUsers(supportUID string) []model.User {
	return []model.User{
		{UID: "local:admin-seed", Name: "Site Admin", Email: "admin@example.com", Verified: true, Admin: true},
		{UID: supportUID, Name: "Support", Email: "support@example.com", Verified: true},
		{UID: "local:demo-seller", Name: "Demo Seller", Email: "seller@example.com", Verified: true},
	}
}

func buildSeedListings() []seedListing {
	return []seedListing{
		{Title: "Road bike", Description: "Aluminium frame, recently serviced.", Price: 42000, Category: "sports", Location: "Berlin"},
		{Title: "Standing desk", Description: "Electric height adjustment, 140x70cm top.", Price: 18000, Category: "furniture", Location: "Hamburg"},
		{Title: "Film camera", Description: "35mm SLR with 50mm lens, light meter works.", Price: 9500, Category: "electronics", Location: "Berlin"},
		{Title: "Bookshelf", Description: "Oak veneer, five shelves, minor scratches.", Price: 4500, Category: "furniture", Location: "Munich"},
	}
}
