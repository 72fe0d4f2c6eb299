package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/djsmacker01/flavour-api/models"
	"gorm.io/gorm"
)

type sampleItem struct {
	name        string
	description string
	price       string
	category    string
}

var sampleMenu = []sampleItem{
	{"Caesar Salad", "Fresh romaine lettuce with parmesan, croutons and Caesar dressing", "8.99", models.CategoryAppetizer},
	{"Bruschetta", "Toasted bread topped with tomatoes, garlic, basil and olive oil", "7.50", models.CategoryAppetizer},
	{"Mozzarella Sticks", "Crispy breaded mozzarella with marinara sauce", "6.99", models.CategoryAppetizer},
	{"Soup of the Day", "Ask your server about today's homemade soup", "5.99", models.CategoryAppetizer},
	{"Chicken Wings", "Spicy buffalo wings with blue cheese dip", "9.99", models.CategoryAppetizer},
	{"Grilled Salmon", "Atlantic salmon with lemon butter, vegetables and rice", "24.99", models.CategoryMain},
	{"Beef Tenderloin", "8oz tenderloin with mashed potatoes and asparagus", "32.99", models.CategoryMain},
	{"Margherita Pizza", "Tomato sauce, fresh mozzarella and basil", "14.99", models.CategoryMain},
	{"Chicken Parmesan", "Breaded chicken breast with marinara and mozzarella over pasta", "18.99", models.CategoryMain},
	{"Fish and Chips", "Beer-battered cod with fries and tartar sauce", "16.99", models.CategoryMain},
	{"Vegetarian Risotto", "Creamy arborio rice with seasonal vegetables and parmesan", "15.99", models.CategoryMain},
	{"BBQ Ribs", "Slow-cooked pork ribs with barbecue sauce and coleslaw", "22.99", models.CategoryMain},
	{"Chocolate Lava Cake", "Warm chocolate cake with a molten centre and vanilla ice cream", "9.99", models.CategoryDessert},
	{"Tiramisu", "Classic Italian dessert with espresso-soaked ladyfingers", "8.99", models.CategoryDessert},
	{"New York Cheesecake", "Creamy cheesecake with berry compote", "8.50", models.CategoryDessert},
	{"Apple Pie", "Homemade apple pie with cinnamon and whipped cream", "7.99", models.CategoryDessert},
	{"Ice Cream Sundae", "Three scoops with chocolate sauce, nuts and a cherry", "6.99", models.CategoryDessert},
	{"Red Wine", "Glass of house red", "12.99", models.CategoryDrink},
	{"White Wine", "Glass of house white", "12.99", models.CategoryDrink},
	{"Fresh Orange Juice", "Freshly squeezed orange juice", "4.99", models.CategoryDrink},
	{"Espresso", "Double shot of espresso", "3.50", models.CategoryDrink},
	{"Cappuccino", "Espresso with steamed milk and foam", "4.50", models.CategoryDrink},
	{"Coca Cola", "Chilled can of Coca Cola", "2.99", models.CategoryDrink},
	{"Craft Beer", "Local craft beer on tap", "5.99", models.CategoryDrink},
}

// SeedMenu inserts the sample menu. Items are matched by name, so running it
// again only adds what is missing. It returns the number of items created.
func SeedMenu(ctx context.Context, db *gorm.DB) (int, error) {
	created := 0
	for _, sample := range sampleMenu {
		var existing models.MenuItem
		err := db.WithContext(ctx).Unscoped().Where("name = ?", sample.name).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return created, fmt.Errorf("failed to look up %q: %w", sample.name, err)
		}

		item := models.MenuItem{
			Name:        sample.name,
			Description: sample.description,
			Price:       models.MustMoney(sample.price),
			Category:    sample.category,
			IsAvailable: true,
		}
		if err := db.WithContext(ctx).Create(&item).Error; err != nil {
			return created, fmt.Errorf("failed to create %q: %w", sample.name, err)
		}
		created++
	}
	return created, nil
}
