package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"noctuai/internal/errors"
	"noctuai/internal/model"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) IncrementFreeUsage(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePlan(ctx context.Context, id uuid.UUID, plan model.Plan) error {
	args := m.Called(ctx, id, plan)
	return args.Error(0)
}

// MockCreationRepository is a mock implementation of CreationRepository.
type MockCreationRepository struct {
	mock.Mock
}

func (m *MockCreationRepository) Create(ctx context.Context, creation *model.Creation) error {
	args := m.Called(ctx, creation)
	return args.Error(0)
}

func (m *MockCreationRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Creation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Creation), args.Error(1)
}

func (m *MockCreationRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Creation, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Creation), args.Error(1)
}

func (m *MockCreationRepository) ListPublished(ctx context.Context) ([]model.Creation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Creation), args.Error(1)
}

func (m *MockCreationRepository) UpdateLikes(ctx context.Context, id uuid.UUID, likes model.LikeSet) error {
	args := m.Called(ctx, id, likes)
	return args.Error(0)
}

// MockTextGenerator is a mock implementation of provider.TextGenerator.
type MockTextGenerator struct {
	mock.Mock
}

func (m *MockTextGenerator) GenerateText(ctx context.Context, prompt string, maxOutputTokens int, temperature float64) (string, error) {
	args := m.Called(ctx, prompt, maxOutputTokens, temperature)
	return args.String(0), args.Error(1)
}

// MockImageGenerator is a mock implementation of provider.ImageGenerator.
type MockImageGenerator struct {
	mock.Mock
}

func (m *MockImageGenerator) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	args := m.Called(ctx, prompt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockImageEditor is a mock implementation of provider.ImageEditor.
type MockImageEditor struct {
	mock.Mock
}

func (m *MockImageEditor) RemoveBackground(ctx context.Context, image []byte) ([]byte, error) {
	args := m.Called(ctx, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockImageEditor) EraseObject(ctx context.Context, image []byte, object string) ([]byte, error) {
	args := m.Called(ctx, image, object)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockUploader is a mock implementation of s3.Uploader.
type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) UploadImage(ctx context.Context, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, data, contentType)
	return args.String(0), args.Error(1)
}

type serviceMocks struct {
	userRepo     *MockUserRepository
	creationRepo *MockCreationRepository
	text         *MockTextGenerator
	images       *MockImageGenerator
	editor       *MockImageEditor
	uploader     *MockUploader
}

func newTestService() (CreationService, *serviceMocks) {
	m := &serviceMocks{
		userRepo:     new(MockUserRepository),
		creationRepo: new(MockCreationRepository),
		text:         new(MockTextGenerator),
		images:       new(MockImageGenerator),
		editor:       new(MockImageEditor),
		uploader:     new(MockUploader),
	}
	svc := NewCreationService(m.userRepo, m.creationRepo, m.text, m.images, m.editor, m.uploader, nil, DefaultFreeUsageLimit)
	return svc, m
}

func freeUser(usage int) *model.User {
	return &model.User{
		ID:        uuid.New(),
		Email:     "free@example.com",
		Plan:      model.PlanFree,
		FreeUsage: usage,
	}
}

func premiumUser() *model.User {
	return &model.User{
		ID:    uuid.New(),
		Email: "premium@example.com",
		Plan:  model.PlanPremium,
	}
}

func TestGenerateArticle_FreeUserNearLimit(t *testing.T) {
	svc, m := newTestService()
	user := freeUser(9)

	m.userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	m.text.On("GenerateText", mock.Anything, "write about lighthouses", 800, 0.7).Return("An article.", nil)
	m.creationRepo.On("Create", mock.Anything, mock.MatchedBy(func(c *model.Creation) bool {
		return c.UserID == user.ID &&
			c.Type == model.CreationTypeArticle &&
			c.Prompt == "write about lighthouses" &&
			c.Content == "An article." &&
			!c.Publish
	})).Return(nil)
	m.userRepo.On("IncrementFreeUsage", mock.Anything, user.ID).Return(nil)

	content, err := svc.GenerateArticle(context.Background(), user.ID, "write about lighthouses", 800)

	assert.NoError(t, err)
	assert.Equal(t, "An article.", content)
	m.userRepo.AssertNumberOfCalls(t, "IncrementFreeUsage", 1)
	m.userRepo.AssertExpectations(t)
	m.creationRepo.AssertExpectations(t)
	m.text.AssertExpectations(t)
}

func TestGenerateArticle_FreeUserAtLimit(t *testing.T) {
	svc, m := newTestService()
	user := freeUser(10)

	m.userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	content, err := svc.GenerateArticle(context.Background(), user.ID, "prompt", 800)

	assert.ErrorIs(t, err, errors.ErrQuotaExceeded)
	assert.Equal(t, "Free usage limit reached. Please upgrade to premium.", err.Error())
	assert.Empty(t, content)
	m.text.AssertNotCalled(t, "GenerateText")
	m.creationRepo.AssertNotCalled(t, "Create")
	m.userRepo.AssertNotCalled(t, "IncrementFreeUsage")
}

func TestGenerateArticle_ProviderFailureDoesNotConsumeQuota(t *testing.T) {
	svc, m := newTestService()
	user := freeUser(5)

	m.userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	m.text.On("GenerateText", mock.Anything, "prompt", 800, 0.7).
		Return("", fmt.Errorf("%w: upstream 500", errors.ErrProviderFailure))

	content, err := svc.GenerateArticle(context.Background(), user.ID, "prompt", 800)

	assert.ErrorIs(t, err, errors.ErrProviderFailure)
	assert.Empty(t, content)
	m.creationRepo.AssertNotCalled(t, "Create")
	m.userRepo.AssertNotCalled(t, "IncrementFreeUsage")
}

func TestGenerateArticle_PersistenceFailureDoesNotConsumeQuota(t *testing.T) {
	svc, m := newTestService()
	user := freeUser(5)

	m.userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	m.text.On("GenerateText", mock.Anything, "prompt", 800, 0.7).Return("content", nil)
	m.creationRepo.On("Create", mock.Anything, mock.Anything).Return(fmt.Errorf("insert failed"))

	_, err := svc.GenerateArticle(context.Background(), user.ID, "prompt", 800)

	assert.Error(t, err)
	m.userRepo.AssertNotCalled(t, "IncrementFreeUsage")
}

func TestGenerateArticle_PremiumUserNeverIncrements(t *testing.T) {
	svc, m := newTestService()
	user := premiumUser()

	m.userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	m.text.On("GenerateText", mock.Anything, "prompt", 800, 0.7).Return("content", nil)
	m.creationRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	_, err := svc.GenerateArticle(context.Background(), user.ID, "prompt", 800)

	assert.NoError(t, err)
	m.userRepo.AssertNotCalled(t, "IncrementFreeUsage")
}

func TestGenerateBlogTitle_UsesTitleTokenBudget(t *testing.T) {
	svc, m := newTestService()
	user := freeUser(0)

	m.userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	m.text.On("GenerateText", mock.Anything, "catchy titles about Go", 100, 0.7).Return("1. Title", nil)
	m.creationRepo.On("Create", mock.Anything, mock.MatchedBy(func(c *model.Creation) bool {
		return c.Type == model.CreationTypeBlogTitle
	})).Return(nil)
	m.userRepo.On("IncrementFreeUsage", mock.Anything, user.ID).Return(nil)

	content, err := svc.GenerateBlogTitle(context.Background(), user.ID, "catchy titles about Go")

	assert.NoError(t, err)
	assert.Equal(t, "1. Title", content)
	m.text.AssertExpectations(t)
}

func TestRemoveBackground_FreeUserDeniedBeforeProviderCall(t *testing.T) {
	svc, m := newTestService()
	user := freeUser(0)

	m.userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	content, err := svc.RemoveBackground(context.Background(), user.ID, "/nonexistent/upload")

	assert.ErrorIs(t, err, errors.ErrPremiumRequired)
	assert.Equal(t, "This feature is only available to premium users. Please upgrade your plan.", err.Error())
	assert.Empty(t, content)
	m.editor.AssertNotCalled(t, "RemoveBackground")
	m.creationRepo.AssertNotCalled(t, "Create")
}

func TestGenerateImage_UploadsAndRecordsPublishFlag(t *testing.T) {
	svc, m := newTestService()
	user := premiumUser()
	image := []byte{0x89, 0x50, 0x4e, 0x47}

	m.userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	m.images.On("GenerateImage", mock.Anything, "a lighthouse").Return(image, nil)
	m.uploader.On("UploadImage", mock.Anything, image, "image/png").
		Return("https://cdn.example.com/noctuai-creations/a.png", nil)
	m.creationRepo.On("Create", mock.Anything, mock.MatchedBy(func(c *model.Creation) bool {
		return c.Type == model.CreationTypeImage &&
			c.Content == "https://cdn.example.com/noctuai-creations/a.png" &&
			c.Publish
	})).Return(nil)

	content, err := svc.GenerateImage(context.Background(), user.ID, "a lighthouse", true)

	assert.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/noctuai-creations/a.png", content)
	m.uploader.AssertExpectations(t)
	m.creationRepo.AssertExpectations(t)
}

func TestReviewResume_OversizedFileRejectedBeforeParsing(t *testing.T) {
	svc, m := newTestService()
	user := premiumUser()

	m.userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	content, err := svc.ReviewResume(context.Background(), user.ID, "/nonexistent/resume.pdf", 6*1024*1024)

	assert.ErrorIs(t, err, errors.ErrFileTooLarge)
	assert.Empty(t, content)
	m.text.AssertNotCalled(t, "GenerateText")
	m.creationRepo.AssertNotCalled(t, "Create")
}

func TestToggleLike_AddsAndRemoves(t *testing.T) {
	svc, m := newTestService()
	userID := uuid.New()
	creationID := uuid.New()
	other := uuid.New().String()

	creation := &model.Creation{
		ID:    creationID,
		Likes: model.LikeSet{other},
	}

	m.creationRepo.On("FindByID", mock.Anything, creationID).Return(creation, nil)
	m.creationRepo.On("UpdateLikes", mock.Anything, creationID, mock.Anything).Return(nil)

	updated, liked, err := svc.ToggleLike(context.Background(), creationID, userID)
	assert.NoError(t, err)
	assert.True(t, liked)
	assert.True(t, updated.Likes.Contains(userID.String()))
	assert.True(t, updated.Likes.Contains(other))

	// Second toggle restores the original membership.
	updated, liked, err = svc.ToggleLike(context.Background(), creationID, userID)
	assert.NoError(t, err)
	assert.False(t, liked)
	assert.False(t, updated.Likes.Contains(userID.String()))
	assert.Equal(t, model.LikeSet{other}, updated.Likes)
}

func TestToggleLike_NotFound(t *testing.T) {
	svc, m := newTestService()
	creationID := uuid.New()

	m.creationRepo.On("FindByID", mock.Anything, creationID).Return(nil, gorm.ErrRecordNotFound)

	_, _, err := svc.ToggleLike(context.Background(), creationID, uuid.New())
	assert.ErrorIs(t, err, errors.ErrCreationNotFound)
}

func TestUpgradePlan(t *testing.T) {
	svc, m := newTestService()
	userID := uuid.New()

	m.userRepo.On("UpdatePlan", mock.Anything, userID, model.PlanPremium).Return(nil)

	assert.NoError(t, svc.UpgradePlan(context.Background(), userID))
	m.userRepo.AssertExpectations(t)
}
