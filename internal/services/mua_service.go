package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joshua-takyi/glamour/internal/helpers"
	"github.com/joshua-takyi/glamour/internal/models"
	"go.uber.org/zap"
)

const uploadTimeout = 30 * time.Second

type MUAService struct {
	muaRepo models.MUARepo
	media   helpers.MediaStore
	logger  *zap.Logger
}

// NewMUAService accepts a nil media store; image references are then stored as given.
func NewMUAService(muaRepo models.MUARepo, media helpers.MediaStore, logger *zap.Logger) *MUAService {
	return &MUAService{
		muaRepo: muaRepo,
		media:   media,
		logger:  logger,
	}
}

func (ms *MUAService) Create(ctx context.Context, p models.Principal, mua *models.MUA) (*models.MUA, error) {
	if p.Role != models.RoleMUA {
		return nil, models.Forbidden("only users with the MUA role can create a profile")
	}
	if err := models.Validate.Struct(mua); err != nil {
		return nil, models.InvalidInput(fmt.Sprintf("invalid mua data provided: %v", err))
	}

	var uploaded []string
	if ms.media != nil {
		uploadCtx, cancel := context.WithTimeout(ctx, uploadTimeout)
		defer cancel()

		if mua.ProfilePhoto != "" {
			urls, ids, err := ms.media.Upload(uploadCtx, []string{mua.ProfilePhoto}, helpers.ProfilePhotoFolder)
			if err != nil {
				return nil, models.InvalidInput(fmt.Sprintf("failed to upload profile photo: %v", err))
			}
			if len(urls) > 0 {
				mua.ProfilePhoto = urls[0]
			}
			uploaded = append(uploaded, ids...)
		}
		if len(mua.Portfolio) > 0 {
			urls, ids, err := ms.media.Upload(uploadCtx, mua.Portfolio, helpers.PortfolioFolder)
			if err != nil {
				ms.media.Delete(ctx, uploaded)
				return nil, models.InvalidInput(fmt.Sprintf("failed to upload portfolio: %v", err))
			}
			mua.Portfolio = urls
			uploaded = append(uploaded, ids...)
		}
	}

	now := time.Now().UTC()
	mua.ID = uuid.NewString()
	mua.UserID = p.ID
	mua.Rating = 0
	mua.ReviewsCount = 0
	if mua.Availability == "" {
		mua.Availability = models.AvailabilityAvailable
	}
	mua.CreatedAt = now
	mua.UpdatedAt = now

	created, err := ms.muaRepo.CreateMUA(ctx, mua)
	if err != nil {
		if ms.media != nil && len(uploaded) > 0 {
			ms.media.Delete(ctx, uploaded)
		}
		if errors.Is(err, models.ErrDuplicate) {
			return nil, models.Conflict("you already have a mua profile")
		}
		return nil, models.Internal("failed to create mua profile", err)
	}
	ms.logger.Info("mua profile created", zap.String("mua_id", created.ID), zap.String("user_id", p.ID))
	return created, nil
}

func (ms *MUAService) Search(ctx context.Context, filter models.MUAFilter) ([]*models.MUA, error) {
	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
		return nil, models.InvalidInput("minPrice cannot exceed maxPrice")
	}
	muas, err := ms.muaRepo.SearchMUAs(ctx, filter)
	if err != nil {
		return nil, models.Internal("failed to search muas", err)
	}
	return muas, nil
}

func (ms *MUAService) Get(ctx context.Context, id string) (*models.MUA, error) {
	mua, err := ms.muaRepo.GetMUAByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNoRecord) {
			return nil, models.NotFound("mua not found")
		}
		return nil, models.Internal("failed to load mua", err)
	}
	return mua, nil
}

func (ms *MUAService) List(ctx context.Context, offset, limit int) ([]*models.MUA, int64, error) {
	muas, total, err := ms.muaRepo.ListMUAs(ctx, offset, limit)
	if err != nil {
		return nil, 0, models.Internal("failed to list muas", err)
	}
	return muas, total, nil
}

// Update patches the editable profile fields. Unknown keys are dropped and the
// derived rating fields can never be set this way.
func (ms *MUAService) Update(ctx context.Context, id string, body map[string]interface{}) (*models.MUA, error) {
	fields := make(map[string]interface{})
	for _, key := range models.MUAEditableFields {
		if v, ok := body[key]; ok {
			fields[key] = v
		}
	}
	if len(fields) == 0 {
		return nil, models.InvalidInput("no editable fields provided")
	}
	if err := validateMUAFields(fields); err != nil {
		return nil, err
	}

	current, err := ms.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	minPrice, maxPrice := current.MinPrice, current.MaxPrice
	if v, ok := fields["min_price"].(float64); ok {
		minPrice = v
	}
	if v, ok := fields["max_price"].(float64); ok {
		maxPrice = v
	}
	if maxPrice < minPrice {
		return nil, models.InvalidInput("max_price must be greater than or equal to min_price")
	}

	updated, err := ms.muaRepo.UpdateMUA(ctx, id, fields)
	if err != nil {
		if errors.Is(err, models.ErrNoRecord) {
			return nil, models.NotFound("mua not found")
		}
		return nil, models.Internal("failed to update mua", err)
	}
	return updated, nil
}

func validateMUAFields(fields map[string]interface{}) error {
	for key, v := range fields {
		switch key {
		case "min_price", "max_price", "experience_years":
			n, ok := v.(float64)
			if !ok || n < 0 {
				return models.InvalidInput(key + " must be a non-negative number")
			}
			if key == "experience_years" {
				fields[key] = int(n)
			}
		case "category":
			s, _ := v.(string)
			if err := models.Validate.Var(models.MUACategory(s), "oneof='Bridal & Traditional' 'Fashion & Editorial' 'Bridal & Photoshoot' 'Party & Events' 'Natural & Daily' 'Bridal & Luxury'"); err != nil {
				return models.InvalidInput("invalid category")
			}
		case "availability":
			s, _ := v.(string)
			if err := models.Validate.Var(s, "oneof=Available Booked Unavailable"); err != nil {
				return models.InvalidInput("invalid availability")
			}
		case "name", "location", "specialty":
			s, ok := v.(string)
			if !ok || strings.TrimSpace(s) == "" {
				return models.InvalidInput(key + " cannot be empty")
			}
		case "portfolio", "certifications":
			if _, ok := v.([]interface{}); !ok {
				return models.InvalidInput(key + " must be a list")
			}
		default:
			if _, ok := v.(string); !ok {
				return models.InvalidInput(key + " must be a string")
			}
		}
	}
	return nil
}

func (ms *MUAService) Delete(ctx context.Context, id string) error {
	if err := ms.muaRepo.DeleteMUA(ctx, id); err != nil {
		if errors.Is(err, models.ErrNoRecord) {
			return models.NotFound("mua not found")
		}
		return models.Internal("failed to delete mua", err)
	}
	ms.logger.Info("mua profile deleted", zap.String("mua_id", id))
	return nil
}

func (ms *MUAService) Count(ctx context.Context) (int64, error) {
	n, err := ms.muaRepo.CountMUAs(ctx)
	if err != nil {
		return 0, models.Internal("failed to count muas", err)
	}
	return n, nil
}
