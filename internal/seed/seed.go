// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"huddle/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seeder builds and persists demo entities.
type Seeder struct {
	db   *gorm.DB
	rand *rand.Rand
}

func NewSeeder(db *gorm.DB) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{
		db:   db,
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// ClearAll removes all seeded rows. Join tables go first so foreign keys
// do not get in the way.
func (s *Seeder) ClearAll() error {
	tables := []string{
		"profile_favorites", "profile_friends", "audience_members",
		"post_tagged_friends", "image_tags", "images", "likes",
		"comments", "posts", "audiences", "profiles", "users",
	}
	for _, table := range tables {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	return nil
}

func (s *Seeder) createUser() (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username:  gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		FirstName: gofakeit.FirstName(),
		LastName:  gofakeit.LastName(),
		Password:  string(hashed),
	}
	if err := s.db.Create(user).Error; err != nil {
		return nil, err
	}
	profile := &models.Profile{
		UserID:          user.ID,
		Avatar:          fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		DefaultAudience: models.AudiencePublic,
	}
	if err := s.db.Create(profile).Error; err != nil {
		return nil, err
	}
	user.Profile = profile
	return user, nil
}

func (s *Seeder) createPost(user *models.User) (*models.Post, error) {
	post := &models.Post{
		Title:    gofakeit.Sentence(4),
		Text:     gofakeit.Paragraph(1, 3, 8, "\n"),
		Feeling:  gofakeit.RandomString([]string{"", "happy", "excited", "tired"}),
		UserID:   user.ID,
		Audience: models.AudiencePublic,
	}
	// realistic created_at spread over the last 90 days
	post.CreatedAt = time.Now().Add(-time.Duration(s.rand.Intn(90*24)) * time.Hour)
	if err := s.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

func (s *Seeder) createComment(user *models.User, post *models.Post, parent *models.Comment) (*models.Comment, error) {
	comment := &models.Comment{
		Text:   gofakeit.Sentence(8),
		UserID: user.ID,
		PostID: post.ID,
	}
	if parent != nil {
		comment.ParentID = &parent.ID
	}
	if err := s.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// Run populates the database with users, a symmetric friend mesh, posts,
// comments with a sprinkling of replies, and like votes.
func (s *Seeder) Run(numUsers, numPosts int) error {
	users := make([]*models.User, 0, numUsers)
	for i := 0; i < numUsers; i++ {
		user, err := s.createUser()
		if err != nil {
			return fmt.Errorf("seeding user: %w", err)
		}
		users = append(users, user)
	}

	// friend mesh: everyone befriends a handful of others, symmetrically
	for _, user := range users {
		for n := 0; n < 3; n++ {
			other := users[s.rand.Intn(len(users))]
			if other.ID == user.ID {
				continue
			}
			if err := s.db.Exec(
				"INSERT INTO profile_friends (profile_id, friend_id) VALUES (?, ?)",
				user.Profile.ID, other.Profile.ID).Error; err != nil {
				continue // duplicate pair, skip
			}
			_ = s.db.Exec(
				"INSERT INTO profile_friends (profile_id, friend_id) VALUES (?, ?)",
				other.Profile.ID, user.Profile.ID).Error
		}
	}

	posts := make([]*models.Post, 0, numPosts)
	for i := 0; i < numPosts; i++ {
		author := users[s.rand.Intn(len(users))]
		post, err := s.createPost(author)
		if err != nil {
			return fmt.Errorf("seeding post: %w", err)
		}
		posts = append(posts, post)
	}

	for _, post := range posts {
		numComments := s.rand.Intn(6)
		var last *models.Comment
		for i := 0; i < numComments; i++ {
			commenter := users[s.rand.Intn(len(users))]
			var parent *models.Comment
			if last != nil && s.rand.Intn(4) == 0 {
				parent = last
			}
			comment, err := s.createComment(commenter, post, parent)
			if err != nil {
				return fmt.Errorf("seeding comment: %w", err)
			}
			if parent == nil {
				last = comment
			}
		}

		numLikes := s.rand.Intn(len(users))
		for _, user := range users[:numLikes] {
			like := &models.Like{
				UserID:     user.ID,
				TargetKind: models.LikeTargetPost,
				TargetID:   post.ID,
				IsLike:     s.rand.Intn(5) != 0,
			}
			_ = s.db.Create(like).Error
		}
	}

	return nil
}
