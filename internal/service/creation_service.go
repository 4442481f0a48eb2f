package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"
	"gorm.io/gorm"

	"noctuai/internal/cache"
	"noctuai/internal/errors"
	"noctuai/internal/model"
	"noctuai/internal/provider"
	"noctuai/internal/repository"
	"noctuai/internal/storage/s3"
)

const (
	// MaxResumeSize caps resume uploads, checked before any parsing.
	MaxResumeSize = 5 * 1024 * 1024

	blogTitleMaxTokens    = 100
	resumeReviewMaxTokens = 1000
	textTemperature       = 0.7

	publishedFeedCacheKey = "creations:published"
	publishedFeedCacheTTL = 30 * time.Second
)

const resumePromptPrefix = "Review the following resume and provide constructive feedback on its strengths, weakness, and areas for improvement. " +
	"Please format the response in markdown with clear sections for: Summary, Strengths, Areas for Improvement, and Specific Recommendations. \n\n"

// CreationService executes the gated AI features and manages creations.
// Every feature runs the same sequence: resolve entitlement, gate, call the
// one provider, record the creation, then (metered features only) persist the
// usage increment. A failure anywhere before the increment leaves the counter
// untouched.
type CreationService interface {
	GenerateArticle(ctx context.Context, userID uuid.UUID, prompt string, length int) (string, error)
	GenerateBlogTitle(ctx context.Context, userID uuid.UUID, prompt string) (string, error)
	GenerateImage(ctx context.Context, userID uuid.UUID, prompt string, publish bool) (string, error)
	RemoveBackground(ctx context.Context, userID uuid.UUID, imagePath string) (string, error)
	RemoveObject(ctx context.Context, userID uuid.UUID, imagePath, object string) (string, error)
	ReviewResume(ctx context.Context, userID uuid.UUID, resumePath string, size int64) (string, error)
	ToggleLike(ctx context.Context, creationID, userID uuid.UUID) (*model.Creation, bool, error)
	ListUserCreations(ctx context.Context, userID uuid.UUID) ([]model.Creation, error)
	ListPublishedCreations(ctx context.Context) ([]model.Creation, error)
	UpgradePlan(ctx context.Context, userID uuid.UUID) error
}

type creationService struct {
	userRepo     repository.UserRepository
	creationRepo repository.CreationRepository
	text         provider.TextGenerator
	images       provider.ImageGenerator
	editor       provider.ImageEditor
	uploader     s3.Uploader
	cache        *cache.Client
	usageLimit   int
}

// NewCreationService creates a new creation service.
func NewCreationService(
	userRepo repository.UserRepository,
	creationRepo repository.CreationRepository,
	text provider.TextGenerator,
	images provider.ImageGenerator,
	editor provider.ImageEditor,
	uploader s3.Uploader,
	cache *cache.Client,
	usageLimit int,
) CreationService {
	if usageLimit <= 0 {
		usageLimit = DefaultFreeUsageLimit
	}
	return &creationService{
		userRepo:     userRepo,
		creationRepo: creationRepo,
		text:         text,
		images:       images,
		editor:       editor,
		uploader:     uploader,
		cache:        cache,
		usageLimit:   usageLimit,
	}
}

// authorize resolves the user's entitlement and runs the quota gate. The
// returned user carries the plan needed for the post-success increment check.
func (s *creationService) authorize(ctx context.Context, userID uuid.UUID, feature Feature) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve entitlement: %w", err)
	}

	policy := PolicyFor(feature)
	decision := Decide(policy, user.Plan, user.FreeUsage, s.usageLimit)
	if !decision.Allowed {
		return nil, DecisionError(policy)
	}
	return user, nil
}

// finish records the creation and, for metered features invoked by free
// users, persists the usage increment. The increment runs strictly after the
// insert so a persistence failure never consumes quota.
func (s *creationService) finish(ctx context.Context, user *model.User, feature Feature, creation *model.Creation) error {
	if err := s.creationRepo.Create(ctx, creation); err != nil {
		return fmt.Errorf("record creation: %w", err)
	}

	if PolicyFor(feature) == PolicyMetered && user.Plan != model.PlanPremium {
		if err := s.userRepo.IncrementFreeUsage(ctx, user.ID); err != nil {
			return fmt.Errorf("increment usage: %w", err)
		}
	}

	if creation.Publish {
		_ = s.cache.Delete(ctx, publishedFeedCacheKey)
	}
	return nil
}

// GenerateArticle produces a long-form article from the prompt. Metered.
func (s *creationService) GenerateArticle(ctx context.Context, userID uuid.UUID, prompt string, length int) (string, error) {
	user, err := s.authorize(ctx, userID, FeatureArticle)
	if err != nil {
		return "", err
	}

	content, err := s.text.GenerateText(ctx, prompt, length, textTemperature)
	if err != nil {
		return "", err
	}

	creation := &model.Creation{
		UserID:  userID,
		Prompt:  prompt,
		Content: content,
		Type:    model.CreationTypeArticle,
	}
	if err := s.finish(ctx, user, FeatureArticle, creation); err != nil {
		return "", err
	}
	return content, nil
}

// GenerateBlogTitle produces blog title suggestions from the prompt. Metered.
func (s *creationService) GenerateBlogTitle(ctx context.Context, userID uuid.UUID, prompt string) (string, error) {
	user, err := s.authorize(ctx, userID, FeatureBlogTitle)
	if err != nil {
		return "", err
	}

	content, err := s.text.GenerateText(ctx, prompt, blogTitleMaxTokens, textTemperature)
	if err != nil {
		return "", err
	}

	creation := &model.Creation{
		UserID:  userID,
		Prompt:  prompt,
		Content: content,
		Type:    model.CreationTypeBlogTitle,
	}
	if err := s.finish(ctx, user, FeatureBlogTitle, creation); err != nil {
		return "", err
	}
	return content, nil
}

// GenerateImage produces an image from the prompt and publishes its CDN URL.
// Premium only.
func (s *creationService) GenerateImage(ctx context.Context, userID uuid.UUID, prompt string, publish bool) (string, error) {
	user, err := s.authorize(ctx, userID, FeatureImage)
	if err != nil {
		return "", err
	}

	image, err := s.images.GenerateImage(ctx, prompt)
	if err != nil {
		return "", err
	}

	url, err := s.uploader.UploadImage(ctx, image, "image/png")
	if err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrProviderFailure, err)
	}

	creation := &model.Creation{
		UserID:  userID,
		Prompt:  prompt,
		Content: url,
		Type:    model.CreationTypeImage,
		Publish: publish,
	}
	if err := s.finish(ctx, user, FeatureImage, creation); err != nil {
		return "", err
	}
	return url, nil
}

// RemoveBackground strips the background from the uploaded image. Premium only.
func (s *creationService) RemoveBackground(ctx context.Context, userID uuid.UUID, imagePath string) (string, error) {
	user, err := s.authorize(ctx, userID, FeatureRemoveBackground)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(imagePath)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}

	edited, err := s.editor.RemoveBackground(ctx, data)
	if err != nil {
		return "", err
	}

	url, err := s.uploader.UploadImage(ctx, edited, "image/png")
	if err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrProviderFailure, err)
	}

	creation := &model.Creation{
		UserID:  userID,
		Prompt:  "Remove background from image",
		Content: url,
		Type:    model.CreationTypeImage,
	}
	if err := s.finish(ctx, user, FeatureRemoveBackground, creation); err != nil {
		return "", err
	}
	return url, nil
}

// RemoveObject erases the named object from the uploaded image. Premium only.
func (s *creationService) RemoveObject(ctx context.Context, userID uuid.UUID, imagePath, object string) (string, error) {
	user, err := s.authorize(ctx, userID, FeatureRemoveObject)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(imagePath)
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}

	edited, err := s.editor.EraseObject(ctx, data, object)
	if err != nil {
		return "", err
	}

	url, err := s.uploader.UploadImage(ctx, edited, "image/png")
	if err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrProviderFailure, err)
	}

	creation := &model.Creation{
		UserID:  userID,
		Prompt:  fmt.Sprintf("Remove %s from image", object),
		Content: url,
		Type:    model.CreationTypeImage,
	}
	if err := s.finish(ctx, user, FeatureRemoveObject, creation); err != nil {
		return "", err
	}
	return url, nil
}

// ReviewResume extracts text from the uploaded PDF and asks for a structured
// review. Premium only. The size limit is enforced before the file is read.
func (s *creationService) ReviewResume(ctx context.Context, userID uuid.UUID, resumePath string, size int64) (string, error) {
	user, err := s.authorize(ctx, userID, FeatureResumeReview)
	if err != nil {
		return "", err
	}

	if size > MaxResumeSize {
		return "", errors.ErrFileTooLarge
	}

	resumeText, err := extractPDFText(resumePath)
	if err != nil {
		return "", err
	}

	content, err := s.text.GenerateText(ctx, resumePromptPrefix+resumeText, resumeReviewMaxTokens, textTemperature)
	if err != nil {
		return "", err
	}

	creation := &model.Creation{
		UserID:  userID,
		Prompt:  "Review the uploaded resume",
		Content: content,
		Type:    model.CreationTypeResumeReview,
	}
	if err := s.finish(ctx, user, FeatureResumeReview, creation); err != nil {
		return "", err
	}
	return content, nil
}

// extractPDFText pulls the plain text out of a PDF file. Any parse problem is
// a validation error, not a provider failure.
func extractPDFText(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", errors.ErrInvalidPDF
	}
	defer f.Close()

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", errors.ErrInvalidPDF
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return "", errors.ErrInvalidPDF
	}
	return buf.String(), nil
}

// ToggleLike flips the requesting user's membership in a creation's likes set
// and returns the updated creation plus whether it is now liked.
func (s *creationService) ToggleLike(ctx context.Context, creationID, userID uuid.UUID) (*model.Creation, bool, error) {
	creation, err := s.creationRepo.FindByID(ctx, creationID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, false, errors.ErrCreationNotFound
		}
		return nil, false, fmt.Errorf("load creation: %w", err)
	}

	updated := creation.Likes.Toggle(userID.String())
	if err := s.creationRepo.UpdateLikes(ctx, creationID, updated); err != nil {
		return nil, false, fmt.Errorf("update likes: %w", err)
	}
	creation.Likes = updated

	_ = s.cache.Delete(ctx, publishedFeedCacheKey)

	return creation, updated.Contains(userID.String()), nil
}

// ListUserCreations returns the caller's creations, newest first.
func (s *creationService) ListUserCreations(ctx context.Context, userID uuid.UUID) ([]model.Creation, error) {
	return s.creationRepo.ListByUser(ctx, userID)
}

// ListPublishedCreations returns the community feed, served from cache when
// fresh.
func (s *creationService) ListPublishedCreations(ctx context.Context) ([]model.Creation, error) {
	if data, err := s.cache.Get(ctx, publishedFeedCacheKey); err == nil && data != nil {
		var creations []model.Creation
		if err := json.Unmarshal(data, &creations); err == nil {
			return creations, nil
		}
	}

	creations, err := s.creationRepo.ListPublished(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(creations); err == nil {
		_ = s.cache.Set(ctx, publishedFeedCacheKey, data, publishedFeedCacheTTL)
	}
	return creations, nil
}

// UpgradePlan flips the user's plan to premium. Stands in for the billing
// provider's webhook.
func (s *creationService) UpgradePlan(ctx context.Context, userID uuid.UUID) error {
	if err := s.userRepo.UpdatePlan(ctx, userID, model.PlanPremium); err != nil {
		return fmt.Errorf("update plan: %w", err)
	}
	return nil
}
