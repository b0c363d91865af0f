package services

import (
	"context"
	"errors"
	"testing"

	"github.com/joshua-takyi/glamour/internal/models"
	"github.com/joshua-takyi/glamour/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeMedia struct {
	failFolder string
	deleted    []string
}

func (f *fakeMedia) Upload(_ context.Context, sources []string, folder string) ([]string, []string, error) {
	if folder == f.failFolder {
		return nil, nil, errors.New("upload rejected")
	}
	urls := make([]string, len(sources))
	ids := make([]string, len(sources))
	for i, s := range sources {
		urls[i] = "https://cdn.test/" + folder + "/" + s
		ids[i] = folder + "/" + s
	}
	return urls, ids, nil
}

func (f *fakeMedia) Delete(_ context.Context, ids []string) {
	f.deleted = append(f.deleted, ids...)
}

func newMUA() *models.MUA {
	return &models.MUA{
		Name:         "Efua Faces",
		Location:     "Kumasi",
		Category:     models.CategoryPartyEvents,
		Specialty:    "Glam",
		MinPrice:     200,
		MaxPrice:     800,
		ProfilePhoto: "me.jpg",
		Portfolio:    []string{"one.jpg", "two.jpg"},
		Rating:       5,
		ReviewsCount: 99,
	}
}

func TestCreateMUAProfile(t *testing.T) {
	media := &fakeMedia{}
	ms := NewMUAService(memory.New(), media, zap.NewNop())
	ctx := context.Background()
	owner := models.Principal{ID: "u-1", Role: models.RoleMUA}

	_, err := ms.Create(ctx, models.Principal{ID: "u-2", Role: models.RoleCustomer}, newMUA())
	assert.Equal(t, models.KindForbidden, models.KindOf(err))

	created, err := ms.Create(ctx, owner, newMUA())
	require.NoError(t, err)
	assert.Equal(t, "u-1", created.UserID)
	assert.Zero(t, created.Rating)
	assert.Zero(t, created.ReviewsCount)
	assert.Equal(t, models.AvailabilityAvailable, created.Availability)
	assert.Equal(t, "https://cdn.test/muas/profile/me.jpg", created.ProfilePhoto)
	assert.Len(t, created.Portfolio, 2)

	_, err = ms.Create(ctx, owner, newMUA())
	assert.Equal(t, models.KindConflict, models.KindOf(err))
	assert.Len(t, media.deleted, 3)

	bad := newMUA()
	bad.MaxPrice = 100
	_, err = ms.Create(ctx, models.Principal{ID: "u-3", Role: models.RoleMUA}, bad)
	assert.Equal(t, models.KindInvalidInput, models.KindOf(err))
}

func TestCreateMUAUploadFailureCleansUp(t *testing.T) {
	media := &fakeMedia{failFolder: "muas/portfolio"}
	ms := NewMUAService(memory.New(), media, zap.NewNop())

	_, err := ms.Create(context.Background(), models.Principal{ID: "u-1", Role: models.RoleMUA}, newMUA())
	assert.Equal(t, models.KindInvalidInput, models.KindOf(err))
	assert.Equal(t, []string{"muas/profile/me.jpg"}, media.deleted)
}

func TestSearchAndUpdateMUA(t *testing.T) {
	store := memory.New()
	ms := NewMUAService(store, nil, zap.NewNop())
	ctx := context.Background()

	created, err := ms.Create(ctx, models.Principal{ID: "u-1", Role: models.RoleMUA}, newMUA())
	require.NoError(t, err)
	assert.Equal(t, "me.jpg", created.ProfilePhoto)

	minPrice, maxPrice := 100.0, 50.0
	_, err = ms.Search(ctx, models.MUAFilter{MinPrice: &minPrice, MaxPrice: &maxPrice})
	assert.Equal(t, models.KindInvalidInput, models.KindOf(err))

	found, err := ms.Search(ctx, models.MUAFilter{Location: "kumasi", Search: "glam"})
	require.NoError(t, err)
	assert.Len(t, found, 1)

	found, err = ms.Search(ctx, models.MUAFilter{Category: models.CategoryBridalLuxury})
	require.NoError(t, err)
	assert.Empty(t, found)

	updated, err := ms.Update(ctx, created.ID, map[string]interface{}{
		"name":             "Efua Studio",
		"experience_years": 4.0,
		"rating":           5.0,
	})
	require.NoError(t, err)
	assert.Equal(t, "Efua Studio", updated.Name)
	require.NotNil(t, updated.ExperienceYears)
	assert.Equal(t, 4, *updated.ExperienceYears)
	assert.Zero(t, updated.Rating)

	_, err = ms.Update(ctx, created.ID, map[string]interface{}{"max_price": 10.0})
	assert.Equal(t, models.KindInvalidInput, models.KindOf(err))

	_, err = ms.Update(ctx, created.ID, map[string]interface{}{"reviews_count": 3.0})
	assert.Equal(t, models.KindInvalidInput, models.KindOf(err))

	_, err = ms.Update(ctx, created.ID, map[string]interface{}{"category": "Cosplay"})
	assert.Equal(t, models.KindInvalidInput, models.KindOf(err))

	require.NoError(t, ms.Delete(ctx, created.ID))
	_, err = ms.Get(ctx, created.ID)
	assert.Equal(t, models.KindNotFound, models.KindOf(err))
}
