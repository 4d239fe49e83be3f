package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/junaidrashid-git/aurelia-api/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SeedAccount is a login created by Seed.
type SeedAccount struct {
	Email    string
	Password string
	FullName string
	Role     models.Role
}

var SeedAccounts = []SeedAccount{
	{Email: "admin@aureliajewels.com", Password: "Admin@1234", FullName: "Aurelia Admin", Role: models.RoleAdmin},
	{Email: "demo@aureliajewels.com", Password: "Demo@1234", FullName: "Demo Customer", Role: models.RoleCustomer},
}

type SeedResult struct {
	Products int
	Accounts int
}

// Seed loads the demo catalog and accounts. Without reset, products are only
// inserted into an empty catalog and existing accounts are kept. With reset
// every table is dropped and recreated first.
func Seed(ctx context.Context, db *gorm.DB, reset bool, hash func(string) (string, error), logger *slog.Logger) (SeedResult, error) {
	var result SeedResult
	if reset {
		if err := Reset(db); err != nil {
			return result, err
		}
		logger.Info("tables recreated")
	} else if err := Migrate(db); err != nil {
		return result, err
	}

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Product{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			logger.Info("products already seeded, skipping", slog.Int64("existing", count))
		} else {
			products := SeedProducts()
			if err := tx.Create(&products).Error; err != nil {
				return fmt.Errorf("seed products: %w", err)
			}
			result.Products = len(products)
		}

		for _, acct := range SeedAccounts {
			var existing models.User
			err := tx.Where("email = ?", acct.Email).First(&existing).Error
			if err == nil {
				logger.Info("account already exists, skipping", slog.String("email", acct.Email))
				continue
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			hashed, err := hash(acct.Password)
			if err != nil {
				return err
			}
			user := models.User{
				Email:          acct.Email,
				HashedPassword: hashed,
				FullName:       acct.FullName,
				Role:           acct.Role,
				IsActive:       true,
			}
			if err := tx.Create(&user).Error; err != nil {
				return fmt.Errorf("seed account %s: %w", acct.Email, err)
			}
			result.Accounts++
		}
		return nil
	})
	return result, err
}

func seedProduct(name string, price, original int64, discount float64, category, sub, description, image string,
	images []string, rating float64, reviews, stock int, featured bool, highlights, features []string) models.Product {
	op := decimal.NewFromInt(original)
	d := discount
	return models.Product{
		Name:          name,
		Price:         decimal.NewFromInt(price),
		OriginalPrice: &op,
		Discount:      &d,
		Category:      category,
		Sub:           sub,
		Description:   description,
		Image:         image,
		Images:        images,
		Highlights:    highlights,
		Features:      features,
		Rating:        rating,
		ReviewCount:   reviews,
		StockQuantity: stock,
		IsFeatured:    featured,
	}
}

// SeedProducts is the demo jewellery catalog.
func SeedProducts() []models.Product {
	perks := []string{"Free Shipping", "Easy Returns", "30-Day Exchange"}
	return []models.Product{
		// Rings
		seedProduct("Solitaire Diamond Ring", 28000, 32000, 12.5, "rings", "solitaire",
			"Stunning solitaire diamond ring with certified diamond stone", "/images/rings.jpg",
			[]string{"/images/rings.jpg", "/images/rings-2.jpg"}, 4.8, 245, 15, true,
			[]string{"100% Certified", "Hallmarked Gold", "Lifetime Warranty"}, perks),
		seedProduct("Halo Diamond Ring", 32000, 38000, 15.8, "rings", "halo",
			"Elegant halo diamond ring with surrounding diamonds", "/images/rings.jpg",
			[]string{"/images/rings.jpg", "/images/rings-2.jpg"}, 4.7, 189, 10, true,
			[]string{"100% Certified", "22K Gold", "BIS Hallmarked"}, nil),
		seedProduct("Stackable Gold Ring Set", 9500, 11000, 13.6, "rings", "stackable",
			"Beautiful set of 3 stackable gold rings for everyday wear", "/images/rings.jpg",
			[]string{"/images/rings.jpg"}, 4.5, 412, 50, false,
			[]string{"Light Weight", "Daily Wear", "Elegant Design"}, nil),
		seedProduct("Twisted Band Ring", 6500, 7800, 16.7, "rings", "band",
			"Minimalist twisted gold band ring for everyday elegance", "/images/rings.jpg",
			[]string{"/images/rings.jpg"}, 4.3, 98, 30, false,
			[]string{"18K Gold", "Minimalist", "Unisex"}, nil),

		// Necklaces
		seedProduct("Gold Pendant Necklace", 21000, 24000, 12.5, "necklaces", "pendant",
			"Classic gold pendant necklace with intricate filigree design", "/images/necklaces.jpg",
			[]string{"/images/necklaces.jpg", "/images/necklaces-2.jpg"}, 4.6, 334, 20, true,
			[]string{"22K Gold", "Lightweight", "Adjustable Chain"}, nil),
		seedProduct("Velvet Choker Necklace", 26000, 30000, 13.3, "necklaces", "choker",
			"Luxurious velvet choker with diamond accent", "/images/necklaces.jpg",
			[]string{"/images/necklaces.jpg"}, 4.9, 156, 12, false,
			[]string{"Premium Velvet", "Diamond Accent", "Party Wear"}, nil),
		seedProduct("Temple Gold Necklace", 42000, 48000, 12.5, "necklaces", "temple",
			"Traditional temple-style gold necklace with ruby accents", "/images/necklaces.jpg",
			[]string{"/images/necklaces.jpg"}, 4.8, 201, 8, true,
			[]string{"Traditional Design", "Ruby Accents", "22K Gold"}, nil),

		// Anklets
		seedProduct("Classic Gold Anklet", 7000, 8000, 12.5, "anklets", "gold",
			"Elegant classic gold anklet for everyday styling", "/images/anklets.jpg",
			[]string{"/images/anklets.jpg"}, 4.4, 289, 40, false,
			[]string{"18K Gold", "Durable", "Free Size"}, nil),
		seedProduct("Beaded Silver Anklet", 3500, 4200, 16.7, "anklets", "silver",
			"Delicate beaded silver anklet with charm", "/images/anklets.jpg",
			[]string{"/images/anklets.jpg"}, 4.2, 175, 60, false,
			[]string{"92.5 Silver", "Lightweight", "Beach Wear"}, nil),

		// Bangles
		seedProduct("Traditional Kada Bangle", 15000, 18000, 16.7, "bangles", "kada",
			"Traditional thick gold kada bangle for festivals", "/images/bangles.jpg",
			[]string{"/images/bangles.jpg", "/images/bangles-2.jpg"}, 4.7, 223, 25, true,
			[]string{"22K Gold", "Traditional Design", "Auspicious"}, nil),
		seedProduct("Kundan Bangle Set", 12000, 14500, 17.2, "bangles", "kundan",
			"Exquisite kundan work bangle set of 4 pieces", "/images/bangles.jpg",
			[]string{"/images/bangles.jpg"}, 4.6, 118, 20, false,
			[]string{"Kundan Work", "Bridal Wear", "Set of 4"}, nil),

		// Earrings
		seedProduct("Diamond Stud Earrings", 15000, 18000, 16.7, "earrings", "studs",
			"Elegant certified diamond stud earrings", "/images/earrings.jpg",
			[]string{"/images/earrings.jpg", "/images/earrings-2.jpg"}, 4.8, 389, 18, true,
			[]string{"Certified Diamonds", "Screw Back", "All Occasion"}, nil),
		seedProduct("Jhumka Drop Earrings", 8500, 10000, 15.0, "earrings", "jhumka",
			"Traditional gold jhumka earrings with pearl drops", "/images/earrings.jpg",
			[]string{"/images/earrings.jpg"}, 4.5, 267, 35, false,
			[]string{"Pearl Drops", "Traditional", "Lightweight"}, nil),
		seedProduct("Hoop Earrings", 5500, 6500, 15.4, "earrings", "hoops",
			"Modern gold hoop earrings for everyday glam", "/images/earrings.jpg",
			[]string{"/images/earrings.jpg"}, 4.3, 312, 45, false,
			[]string{"18K Gold", "Modern", "Lightweight"}, nil),

		// Chains
		seedProduct("Figaro Gold Chain", 18000, 21000, 14.3, "chains", "figaro",
			"Classic Figaro pattern gold chain, perfect for pendants", "/images/chains.jpg",
			[]string{"/images/chains.jpg"}, 4.5, 143, 22, false,
			[]string{"22K Gold", "Hallmarked", "Unisex"}, nil),
		seedProduct("Box Chain Necklace", 14000, 17000, 17.6, "chains", "box",
			"Sleek box-link gold chain for a minimalist look", "/images/chains.jpg",
			[]string{"/images/chains.jpg"}, 4.4, 89, 28, false,
			[]string{"18K Gold", "Minimalist", "Durable"}, nil),
	}
}
