package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"huddle/internal/config"
	"huddle/internal/models"
	"huddle/internal/repository"
	"huddle/internal/service"

	"github.com/gofiber/fiber/v2"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
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

	cfg := &config.Config{
		JWTSecret:            "test_secret",
		MediaDir:             t.TempDir(),
		ImageMaxUploadSizeMB: 1,
	}
	s := &Server{
		config:       cfg,
		db:           db,
		userRepo:     repository.NewUserRepository(db),
		postRepo:     repository.NewPostRepository(db),
		commentRepo:  repository.NewCommentRepository(db),
		likeRepo:     repository.NewLikeRepository(db),
		audienceRepo: repository.NewAudienceRepository(db),
		profileRepo:  repository.NewProfileRepository(db),
		imageRepo:    repository.NewImageRepository(db),
	}
	s.postService = service.NewPostService(
		s.postRepo, s.commentRepo, s.likeRepo, s.profileRepo, s.audienceRepo, s.userRepo)
	s.commentService = service.NewCommentService(
		s.commentRepo, s.postRepo, s.likeRepo, s.userRepo)
	s.audienceService = service.NewAudienceService(
		s.audienceRepo, s.profileRepo, s.userRepo)
	s.imageService = service.NewImageService(
		s.imageRepo, s.postRepo, s.userRepo, cfg)
	s.profileService = service.NewProfileService(
		s.profileRepo, s.userRepo, s.imageService)
	return s
}

// asUser injects the authenticated user id the way the auth middleware does.
func asUser(userID uint) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Locals("userID", userID)
		return c.Next()
	}
}

func createUser(t *testing.T, s *Server, username string) *models.User {
	t.Helper()
	user := &models.User{Username: username, Password: "x"}
	if err := s.db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create user %s: %v", username, err)
	}
	profile := &models.Profile{UserID: user.ID, DefaultAudience: models.AudiencePublic}
	if err := s.db.Create(profile).Error; err != nil {
		t.Fatalf("Failed to create profile for %s: %v", username, err)
	}
	user.Profile = profile
	return user
}

func createPost(t *testing.T, s *Server, user *models.User, text string) *models.Post {
	t.Helper()
	post := &models.Post{Text: text, UserID: user.ID, Audience: models.AudiencePublic}
	if err := s.db.Create(post).Error; err != nil {
		t.Fatalf("Failed to create post: %v", err)
	}
	return post
}

func jsonRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// multipartRequest builds a multipart form request with optional string
// fields and one optional file part.
func multipartRequest(t *testing.T, method, target string, fields map[string]string, fileField, filename string, fileContent []byte) *http.Request {
	t.Helper()
	buf := bytes.NewBuffer(nil)
	writer := multipart.NewWriter(buf)
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			t.Fatalf("Failed to write form field %s: %v", name, err)
		}
	}
	if fileField != "" {
		part, err := writer.CreateFormFile(fileField, filename)
		if err != nil {
			t.Fatalf("Failed to create form file: %v", err)
		}
		if _, err := part.Write(fileContent); err != nil {
			t.Fatalf("Failed to write form file: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to close multipart writer: %v", err)
	}
	req := httptest.NewRequest(method, target, buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("Failed to decode response body: %v", err)
	}
}
