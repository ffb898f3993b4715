package service

import (
	"context"
	"testing"

	"huddle/internal/models"
	"huddle/internal/repository"

	"github.com/stretchr/testify/require"
)

// Function-field stubs for the repository interfaces. Tests override just
// the calls they care about.

type postRepoStub struct {
	createFn        func(context.Context, *models.Post) error
	getByIDFn       func(context.Context, uint, uint) (*models.Post, error)
	listFn          func(context.Context, uint, repository.PostFilter, int, int) ([]*models.Post, error)
	updateFn        func(context.Context, *models.Post) error
	updateFieldsFn  func(context.Context, uint, map[string]interface{}) error
	deleteFn        func(context.Context, uint) error
	replaceTaggedFn func(context.Context, *models.Post, []uint) error
}

func (s *postRepoStub) Create(ctx context.Context, post *models.Post) error {
	return s.createFn(ctx, post)
}
func (s *postRepoStub) GetByID(ctx context.Context, id, viewerID uint) (*models.Post, error) {
	return s.getByIDFn(ctx, id, viewerID)
}
func (s *postRepoStub) List(ctx context.Context, viewerID uint, filter repository.PostFilter, limit, offset int) ([]*models.Post, error) {
	return s.listFn(ctx, viewerID, filter, limit, offset)
}
func (s *postRepoStub) Update(ctx context.Context, post *models.Post) error {
	return s.updateFn(ctx, post)
}
func (s *postRepoStub) UpdateFields(ctx context.Context, postID uint, fields map[string]interface{}) error {
	return s.updateFieldsFn(ctx, postID, fields)
}
func (s *postRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}
func (s *postRepoStub) ReplaceTaggedFriends(ctx context.Context, post *models.Post, userIDs []uint) error {
	return s.replaceTaggedFn(ctx, post, userIDs)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn: func(_ context.Context, p *models.Post) error { p.ID = 1; return nil },
		getByIDFn: func(_ context.Context, id, _ uint) (*models.Post, error) {
			return &models.Post{ID: id, UserID: 1}, nil
		},
		listFn: func(_ context.Context, _ uint, _ repository.PostFilter, _, _ int) ([]*models.Post, error) {
			return nil, nil
		},
		updateFn:        func(_ context.Context, _ *models.Post) error { return nil },
		updateFieldsFn:  func(_ context.Context, _ uint, _ map[string]interface{}) error { return nil },
		deleteFn:        func(_ context.Context, _ uint) error { return nil },
		replaceTaggedFn: func(_ context.Context, _ *models.Post, _ []uint) error { return nil },
	}
}

type commentRepoStub struct {
	createFn           func(context.Context, *models.Comment) error
	getByIDFn          func(context.Context, uint) (*models.Comment, error)
	listTopLevelFn     func(context.Context, *models.Post, uint, repository.CommentSort) ([]*models.Comment, error)
	listRepliesFn      func(context.Context, uint, uint) ([]*models.Comment, error)
	updateFn           func(context.Context, *models.Comment) error
	setLikedByAuthorFn func(context.Context, uint, bool) error
	deleteFn           func(context.Context, uint) error
}

func (s *commentRepoStub) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}
func (s *commentRepoStub) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}
func (s *commentRepoStub) ListTopLevel(ctx context.Context, post *models.Post, viewerID uint, sort repository.CommentSort) ([]*models.Comment, error) {
	return s.listTopLevelFn(ctx, post, viewerID, sort)
}
func (s *commentRepoStub) ListReplies(ctx context.Context, parentID, viewerID uint) ([]*models.Comment, error) {
	return s.listRepliesFn(ctx, parentID, viewerID)
}
func (s *commentRepoStub) Update(ctx context.Context, comment *models.Comment) error {
	return s.updateFn(ctx, comment)
}
func (s *commentRepoStub) SetLikedByAuthor(ctx context.Context, id uint, liked bool) error {
	return s.setLikedByAuthorFn(ctx, id, liked)
}
func (s *commentRepoStub) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func noopCommentRepo() *commentRepoStub {
	return &commentRepoStub{
		createFn: func(_ context.Context, c *models.Comment) error { c.ID = 1; return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, UserID: 1, PostID: 1}, nil
		},
		listTopLevelFn: func(_ context.Context, _ *models.Post, _ uint, _ repository.CommentSort) ([]*models.Comment, error) {
			return nil, nil
		},
		listRepliesFn:      func(_ context.Context, _, _ uint) ([]*models.Comment, error) { return nil, nil },
		updateFn:           func(_ context.Context, _ *models.Comment) error { return nil },
		setLikedByAuthorFn: func(_ context.Context, _ uint, _ bool) error { return nil },
		deleteFn:           func(_ context.Context, _ uint) error { return nil },
	}
}

type likeRepoStub struct {
	toggleFn  func(context.Context, uint, models.LikeTarget, uint, bool) (*models.LikeSummary, error)
	summaryFn func(context.Context, models.LikeTarget, uint, uint) (*models.LikeSummary, error)
}

func (s *likeRepoStub) Toggle(ctx context.Context, userID uint, kind models.LikeTarget, targetID uint, isLike bool) (*models.LikeSummary, error) {
	return s.toggleFn(ctx, userID, kind, targetID, isLike)
}
func (s *likeRepoStub) Summary(ctx context.Context, kind models.LikeTarget, targetID, viewerID uint) (*models.LikeSummary, error) {
	return s.summaryFn(ctx, kind, targetID, viewerID)
}

func noopLikeRepo() *likeRepoStub {
	return &likeRepoStub{
		toggleFn: func(_ context.Context, _ uint, _ models.LikeTarget, _ uint, _ bool) (*models.LikeSummary, error) {
			return &models.LikeSummary{}, nil
		},
		summaryFn: func(_ context.Context, _ models.LikeTarget, _, _ uint) (*models.LikeSummary, error) {
			return &models.LikeSummary{}, nil
		},
	}
}

type audienceRepoStub struct {
	createFn           func(context.Context, *models.Audience, []uint) error
	getByIDFn          func(context.Context, uint) (*models.Audience, error)
	listByOwnerFn      func(context.Context, uint) ([]*models.Audience, error)
	firstByOwnerFn     func(context.Context, uint) (*models.Audience, error)
	updateFn           func(context.Context, *models.Audience, []uint) error
	deleteWithRepairFn func(context.Context, *models.Audience) error
}

func (s *audienceRepoStub) Create(ctx context.Context, audience *models.Audience, memberIDs []uint) error {
	return s.createFn(ctx, audience, memberIDs)
}
func (s *audienceRepoStub) GetByID(ctx context.Context, id uint) (*models.Audience, error) {
	return s.getByIDFn(ctx, id)
}
func (s *audienceRepoStub) ListByOwner(ctx context.Context, ownerID uint) ([]*models.Audience, error) {
	return s.listByOwnerFn(ctx, ownerID)
}
func (s *audienceRepoStub) FirstByOwner(ctx context.Context, ownerID uint) (*models.Audience, error) {
	return s.firstByOwnerFn(ctx, ownerID)
}
func (s *audienceRepoStub) Update(ctx context.Context, audience *models.Audience, memberIDs []uint) error {
	return s.updateFn(ctx, audience, memberIDs)
}
func (s *audienceRepoStub) DeleteWithRepair(ctx context.Context, audience *models.Audience) error {
	return s.deleteWithRepairFn(ctx, audience)
}

func noopAudienceRepo() *audienceRepoStub {
	return &audienceRepoStub{
		createFn: func(_ context.Context, a *models.Audience, _ []uint) error { a.ID = 1; return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.Audience, error) {
			return &models.Audience{ID: id, UserID: 1}, nil
		},
		listByOwnerFn:      func(_ context.Context, _ uint) ([]*models.Audience, error) { return nil, nil },
		firstByOwnerFn:     func(_ context.Context, _ uint) (*models.Audience, error) { return nil, nil },
		updateFn:           func(_ context.Context, _ *models.Audience, _ []uint) error { return nil },
		deleteWithRepairFn: func(_ context.Context, _ *models.Audience) error { return nil },
	}
}

type profileRepoStub struct {
	createFn         func(context.Context, *models.Profile) error
	getByUserIDFn    func(context.Context, uint) (*models.Profile, error)
	updateFn         func(context.Context, *models.Profile) error
	updateFieldsFn   func(context.Context, uint, map[string]interface{}) error
	listFriendsFn    func(context.Context, uint) ([]*models.Profile, error)
	addFriendFn      func(context.Context, uint, uint) error
	removeFriendFn   func(context.Context, uint, uint) error
	isFavoriteFn     func(context.Context, uint, uint) (bool, error)
	toggleFavoriteFn func(context.Context, uint, uint) (bool, error)
}

func (s *profileRepoStub) Create(ctx context.Context, profile *models.Profile) error {
	return s.createFn(ctx, profile)
}
func (s *profileRepoStub) GetByUserID(ctx context.Context, userID uint) (*models.Profile, error) {
	return s.getByUserIDFn(ctx, userID)
}
func (s *profileRepoStub) Update(ctx context.Context, profile *models.Profile) error {
	return s.updateFn(ctx, profile)
}
func (s *profileRepoStub) UpdateFields(ctx context.Context, profileID uint, fields map[string]interface{}) error {
	return s.updateFieldsFn(ctx, profileID, fields)
}
func (s *profileRepoStub) ListFriends(ctx context.Context, userID uint) ([]*models.Profile, error) {
	return s.listFriendsFn(ctx, userID)
}
func (s *profileRepoStub) AddFriend(ctx context.Context, userID, friendUserID uint) error {
	return s.addFriendFn(ctx, userID, friendUserID)
}
func (s *profileRepoStub) RemoveFriend(ctx context.Context, userID, friendUserID uint) error {
	return s.removeFriendFn(ctx, userID, friendUserID)
}
func (s *profileRepoStub) IsFavorite(ctx context.Context, userID, postID uint) (bool, error) {
	return s.isFavoriteFn(ctx, userID, postID)
}
func (s *profileRepoStub) ToggleFavorite(ctx context.Context, userID, postID uint) (bool, error) {
	return s.toggleFavoriteFn(ctx, userID, postID)
}

func noopProfileRepo() *profileRepoStub {
	return &profileRepoStub{
		createFn: func(_ context.Context, _ *models.Profile) error { return nil },
		getByUserIDFn: func(_ context.Context, userID uint) (*models.Profile, error) {
			return &models.Profile{ID: userID, UserID: userID, DefaultAudience: models.AudiencePublic}, nil
		},
		updateFn:         func(_ context.Context, _ *models.Profile) error { return nil },
		updateFieldsFn:   func(_ context.Context, _ uint, _ map[string]interface{}) error { return nil },
		listFriendsFn:    func(_ context.Context, _ uint) ([]*models.Profile, error) { return nil, nil },
		addFriendFn:      func(_ context.Context, _, _ uint) error { return nil },
		removeFriendFn:   func(_ context.Context, _, _ uint) error { return nil },
		isFavoriteFn:     func(_ context.Context, _, _ uint) (bool, error) { return false, nil },
		toggleFavoriteFn: func(_ context.Context, _, _ uint) (bool, error) { return true, nil },
	}
}

type userRepoStub struct {
	createFn        func(context.Context, *models.User) error
	getByIDFn       func(context.Context, uint) (*models.User, error)
	getByUsernameFn func(context.Context, string) (*models.User, error)
	missingIDsFn    func(context.Context, []uint) ([]uint, error)
}

func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) MissingIDs(ctx context.Context, ids []uint) ([]uint, error) {
	return s.missingIDsFn(ctx, ids)
}

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		createFn: func(_ context.Context, u *models.User) error { u.ID = 1; return nil },
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id}, nil
		},
		getByUsernameFn: func(_ context.Context, _ string) (*models.User, error) { return nil, nil },
		missingIDsFn:    func(_ context.Context, _ []uint) ([]uint, error) { return nil, nil },
	}
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	appErr, ok := err.(*models.AppError)
	require.Truef(t, ok, "expected *models.AppError, got %T: %v", err, err)
	require.Equal(t, code, appErr.Code)
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, "VALIDATION_ERROR")
}

func assertPermissionDenied(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, "PERMISSION_DENIED")
}

func assertNotFound(t *testing.T, err error) {
	t.Helper()
	assertAppErrorCode(t, err, "NOT_FOUND")
}
