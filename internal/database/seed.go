package database

import (
	"context"
	"fmt"

	"resto-backend/internal/models"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func sampleMenu() []models.MenuItem {
	item := func(name, desc string, price int64, category, image string, tags ...string) models.MenuItem {
		if tags == nil {
			tags = []string{}
		}
		return models.MenuItem{
			Name:        name,
			Description: desc,
			Price:       decimal.NewFromInt(price),
			Category:    category,
			ImageURL:    "/static/images/" + image,
			DietaryInfo: pq.StringArray(tags),
			Available:   true,
		}
	}
	return []models.MenuItem{
		item("Butter Chicken", "Tender chicken cooked in a rich, creamy tomato sauce with butter and spices", 350, "main", "butter_chicken.jpg"),
		item("Paneer Tikka", "Chunks of paneer marinated in spices and grilled in a tandoor", 280, "starter", "paneer_tikka.jpg", "vegetarian"),
		item("Gulab Jamun", "Soft, spongy milk-solid balls soaked in rose-flavored sugar syrup", 120, "dessert", "gulab_jamun.jpg", "vegetarian"),
		item("Masala Chai", "Traditional Indian spiced tea with milk", 80, "drink", "masala_chai.jpg", "vegetarian"),
		item("Vegetable Biryani", "Fragrant basmati rice cooked with mixed vegetables and aromatic spices", 250, "main", "veg_biryani.jpg", "vegetarian"),
		item("Samosa", "Crispy pastry filled with spiced potatoes and peas", 100, "starter", "samosa.jpg", "vegetarian"),
		item("Rasmalai", "Soft cottage cheese dumplings soaked in sweetened, thickened milk", 150, "dessert", "rasmalai.jpg", "vegetarian"),
		item("Mango Lassi", "Refreshing yogurt-based drink with mango pulp and spices", 120, "drink", "mango_lassi.jpg", "vegetarian"),
		item("Chicken Biryani", "Aromatic basmati rice cooked with tender chicken pieces and spices", 320, "main", "chicken_biryani.jpg"),
		item("Dal Soup", "Hearty lentil soup with Indian spices and herbs", 150, "starter", "dal_soup.jpg", "vegan", "vegetarian"),
		item("Kulfi", "Traditional Indian ice cream with pistachios and cardamom", 130, "dessert", "kulfi.jpg", "vegetarian"),
	}
}

// SeedSampleMenu fills an empty menu with the house dishes. An existing menu
// is left alone.
func SeedSampleMenu(ctx context.Context, db *gorm.DB, log logrus.FieldLogger) error {
	var count int64
	if err := db.WithContext(ctx).Model(&models.MenuItem{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count menu items: %w", err)
	}
	if count > 0 {
		return nil
	}

	items := sampleMenu()
	if err := db.WithContext(ctx).Create(&items).Error; err != nil {
		return fmt.Errorf("seed menu: %w", err)
	}
	log.WithField("items", len(items)).Info("sample menu seeded")
	return nil
}
