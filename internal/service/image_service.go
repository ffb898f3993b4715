package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif" // register decoders for uploaded formats
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"huddle/internal/config"
	"huddle/internal/models"
	"huddle/internal/repository"

	"github.com/chai2010/webp"
	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	DefaultMediaDir             = "/tmp/huddle/media"
	DefaultImageMaxUploadSizeMB = 10
	WebPQuality                 = 80
	AvatarThumbnailSize         = 100
)

type ImageService struct {
	repo               repository.ImageRepository
	postRepo           repository.PostRepository
	userRepo           repository.UserRepository
	mediaDir           string
	maxUploadSizeBytes int64
}

type UploadImageInput struct {
	UserID      uint
	PostID      *uint
	Caption     string
	OrderID     int
	Filename    string
	ContentType string
	Content     []byte
}

type UpdateImageInput struct {
	UserID  uint
	ImageID uint
	Caption *string
	OrderID *int
}

type TagFriendInput struct {
	UserID       uint
	ImageID      uint
	TaggedUserID uint
	Top          int
	Left         int
}

func NewImageService(
	repo repository.ImageRepository,
	postRepo repository.PostRepository,
	userRepo repository.UserRepository,
	cfg *config.Config,
) *ImageService {
	mediaDir := DefaultMediaDir
	maxUploadSizeMB := DefaultImageMaxUploadSizeMB
	if cfg != nil {
		if cfg.MediaDir != "" {
			mediaDir = cfg.MediaDir
		}
		if cfg.ImageMaxUploadSizeMB > 0 {
			maxUploadSizeMB = cfg.ImageMaxUploadSizeMB
		}
	}
	return &ImageService{
		repo:               repo,
		postRepo:           postRepo,
		userRepo:           userRepo,
		mediaDir:           mediaDir,
		maxUploadSizeBytes: int64(maxUploadSizeMB) * 1024 * 1024,
	}
}

// thumbnailSize buckets the source by aspect ratio and returns the
// thumbnail dimensions. Wide images fit a fixed height, moderately wide
// ones a fixed width of 750, near-square ones a fixed height, and tall
// ones a fixed width of 400.
func thumbnailSize(width, height int) (int, int) {
	if width <= 0 || height <= 0 {
		return width, height
	}
	ratio := float64(width) / float64(height)
	switch {
	case ratio > 1.8:
		return scaleToHeight(width, height, 400)
	case ratio > 1.2:
		return scaleToWidth(width, height, 750)
	case ratio >= 0.8:
		return scaleToHeight(width, height, 400)
	default:
		return scaleToWidth(width, height, 400)
	}
}

func scaleToWidth(w, h, target int) (int, int) {
	return target, int(float64(h) * float64(target) / float64(w))
}

func scaleToHeight(w, h, target int) (int, int) {
	return int(float64(w) * float64(target) / float64(h)), target
}

func resizeTo(src image.Image, w, h int) image.Image {
	bounds := src.Bounds()
	if bounds.Dx() == w && bounds.Dy() == h {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeWebP(img image.Image) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: WebPQuality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isAllowedImageMIME(contentType string) bool {
	switch strings.ToLower(strings.TrimSpace(contentType)) {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func (s *ImageService) decode(content []byte) (image.Image, error) {
	if len(content) == 0 {
		return nil, models.NewValidationError("No file uploaded")
	}
	if int64(len(content)) > s.maxUploadSizeBytes {
		return nil, models.NewValidationError(
			fmt.Sprintf("File too large (max %dMB)", s.maxUploadSizeBytes/(1024*1024)))
	}
	if !isAllowedImageMIME(http.DetectContentType(content)) {
		return nil, models.NewValidationError("Invalid image type")
	}
	decoded, _, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return nil, models.NewValidationError("Invalid image file")
	}
	return decoded, nil
}

func (s *ImageService) write(subdir, name string, content []byte) (string, error) {
	dir := filepath.Join(s.mediaDir, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", models.NewInternalError(err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", models.NewInternalError(err)
	}
	return path, nil
}

func (s *ImageService) Upload(ctx context.Context, in UploadImageInput) (*models.Image, error) {
	decoded, err := s.decode(in.Content)
	if err != nil {
		return nil, err
	}

	if in.PostID != nil {
		post, postErr := s.postRepo.GetByID(ctx, *in.PostID, in.UserID)
		if postErr != nil {
			return nil, postErr
		}
		if post == nil {
			return nil, models.NewNotFoundError("Post", *in.PostID)
		}
		if post.UserID != in.UserID {
			return nil, models.NewPermissionDeniedError("You can only attach images to your own posts")
		}
	}

	bounds := decoded.Bounds()
	srcW, srcH := bounds.Dx(), bounds.Dy()
	thumbW, thumbH := thumbnailSize(srcW, srcH)
	thumbnail, err := encodeWebP(resizeTo(decoded, thumbW, thumbH))
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	base := uuid.New().String()
	ext := strings.ToLower(filepath.Ext(in.Filename))
	if ext == "" {
		ext = ".jpg"
	}
	path, err := s.write("images", base+ext, in.Content)
	if err != nil {
		return nil, err
	}
	thumbPath, err := s.write("images", base+"_thumb.webp", thumbnail)
	if err != nil {
		return nil, err
	}

	img := &models.Image{
		Caption:         in.Caption,
		UserID:          in.UserID,
		PostID:          in.PostID,
		Path:            path,
		ThumbnailPath:   thumbPath,
		Width:           srcW,
		Height:          srcH,
		ThumbnailWidth:  thumbW,
		ThumbnailHeight: thumbH,
		OrderID:         in.OrderID,
	}
	if err := s.repo.Create(ctx, img); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, img.ID)
}

func (s *ImageService) getOwned(ctx context.Context, userID, imageID uint) (*models.Image, error) {
	img, err := s.repo.GetByID(ctx, imageID)
	if err != nil {
		return nil, err
	}
	if img == nil {
		return nil, models.NewNotFoundError("Image", imageID)
	}
	if img.UserID != userID {
		return nil, models.NewPermissionDeniedError("You can only modify your own images")
	}
	return img, nil
}

func (s *ImageService) GetImage(ctx context.Context, imageID uint) (*models.Image, error) {
	img, err := s.repo.GetByID(ctx, imageID)
	if err != nil {
		return nil, err
	}
	if img == nil {
		return nil, models.NewNotFoundError("Image", imageID)
	}
	return img, nil
}

func (s *ImageService) ListByPost(ctx context.Context, postID uint) ([]*models.Image, error) {
	return s.repo.ListByPost(ctx, postID)
}

func (s *ImageService) UpdateImage(ctx context.Context, in UpdateImageInput) (*models.Image, error) {
	img, err := s.getOwned(ctx, in.UserID, in.ImageID)
	if err != nil {
		return nil, err
	}
	if in.Caption != nil {
		img.Caption = *in.Caption
	}
	if in.OrderID != nil {
		img.OrderID = *in.OrderID
	}
	if err := s.repo.Update(ctx, img); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, in.ImageID)
}

func (s *ImageService) DeleteImage(ctx context.Context, userID, imageID uint) error {
	img, err := s.getOwned(ctx, userID, imageID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, imageID); err != nil {
		return err
	}
	// Best effort; the rows are gone either way.
	if img.Path != "" {
		_ = os.Remove(img.Path)
	}
	if img.ThumbnailPath != "" {
		_ = os.Remove(img.ThumbnailPath)
	}
	return nil
}

func (s *ImageService) ListTags(ctx context.Context, imageID uint) ([]*models.ImageTag, error) {
	if _, err := s.GetImage(ctx, imageID); err != nil {
		return nil, err
	}
	return s.repo.ListTags(ctx, imageID)
}

func (s *ImageService) TagFriend(ctx context.Context, in TagFriendInput) (*models.ImageTag, error) {
	if _, err := s.getOwned(ctx, in.UserID, in.ImageID); err != nil {
		return nil, err
	}
	tagged, err := s.userRepo.GetByID(ctx, in.TaggedUserID)
	if err != nil {
		return nil, err
	}
	if tagged == nil {
		return nil, models.NewValidationError("Tagged user does not exist")
	}
	tag := &models.ImageTag{
		UserID:  in.TaggedUserID,
		ImageID: in.ImageID,
		Top:     in.Top,
		Left:    in.Left,
	}
	if err := s.repo.AddTag(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

// SaveAvatar stores a profile avatar and its square thumbnail, returning
// both paths. The thumbnail is scaled to cover and center-cropped.
func (s *ImageService) SaveAvatar(ctx context.Context, userID uint, filename string, content []byte) (string, string, error) {
	decoded, err := s.decode(content)
	if err != nil {
		return "", "", err
	}

	thumb, err := encodeWebP(squareThumbnail(decoded, AvatarThumbnailSize))
	if err != nil {
		return "", "", models.NewInternalError(err)
	}

	base := fmt.Sprintf("%d_%s", userID, uuid.New().String())
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		ext = ".jpg"
	}
	avatarPath, err := s.write("avatars", base+ext, content)
	if err != nil {
		return "", "", err
	}
	thumbPath, err := s.write("avatars", base+"_thumb.webp", thumb)
	if err != nil {
		return "", "", err
	}
	return avatarPath, thumbPath, nil
}

func squareThumbnail(src image.Image, size int) image.Image {
	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	// Scale the short edge to size, then crop the long edge centered.
	var scaledW, scaledH int
	if w < h {
		scaledW, scaledH = scaleToWidth(w, h, size)
	} else {
		scaledW, scaledH = scaleToHeight(w, h, size)
	}
	scaled := resizeTo(src, scaledW, scaledH)
	x := (scaledW - size) / 2
	y := (scaledH - size) / 2
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	xdraw.Draw(dst, dst.Bounds(), scaled, image.Point{X: x, Y: y}, xdraw.Src)
	return dst
}
