package services

import (
	"testing"

	"github.com/djsmacker01/flavour-api/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database with every table migrated
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err, "Failed to connect to test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(models.All()...), "Failed to migrate test database")
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, auth0ID, role string) *models.User {
	user := &models.User{
		Auth0ID: auth0ID,
		Name:    "Test " + role,
		Email:   auth0ID[len("auth0|"):] + "@example.com",
		Role:    role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func createTestMenuItem(t *testing.T, db *gorm.DB, name, price, category string, available bool) *models.MenuItem {
	item := &models.MenuItem{
		Name:        name,
		Price:       models.MustMoney(price),
		Category:    category,
		IsAvailable: available,
	}
	require.NoError(t, db.Create(item).Error)
	return item
}
