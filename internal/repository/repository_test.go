package repository

import (
	"fmt"
	"testing"

	"huddle/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}

	err = db.AutoMigrate(
		&models.User{},
		&models.Profile{},
		&models.Audience{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.Image{},
		&models.ImageTag{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate database: %v", err)
	}

	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Password: "x"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create user %s: %v", username, err)
	}
	profile := &models.Profile{UserID: user.ID, DefaultAudience: models.AudiencePublic}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("Failed to create profile for %s: %v", username, err)
	}
	user.Profile = profile
	return user
}

func seedPost(t *testing.T, db *gorm.DB, user *models.User, text string) *models.Post {
	t.Helper()
	post := &models.Post{Text: text, UserID: user.ID, Audience: models.AudiencePublic}
	if err := db.Create(post).Error; err != nil {
		t.Fatalf("Failed to create post: %v", err)
	}
	return post
}

func seedComment(t *testing.T, db *gorm.DB, user *models.User, post *models.Post, text string) *models.Comment {
	t.Helper()
	comment := &models.Comment{Text: text, UserID: user.ID, PostID: post.ID}
	if err := db.Create(comment).Error; err != nil {
		t.Fatalf("Failed to create comment: %v", err)
	}
	return comment
}

func seedUsers(t *testing.T, db *gorm.DB, n int) []*models.User {
	t.Helper()
	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		users = append(users, seedUser(t, db, fmt.Sprintf("user%d", i+1)))
	}
	return users
}
