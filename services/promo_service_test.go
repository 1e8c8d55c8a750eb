package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/models"
	"storefront/repositories"
)

type memPromoStore struct {
	promos []models.Promo
}

func (s *memPromoStore) GetActive(ctx context.Context) ([]models.Promo, error) {
	var out []models.Promo
	for _, p := range s.promos {
		if p.IsActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *memPromoStore) Create(ctx context.Context, promo *models.Promo) error {
	promo.Code = strings.ToUpper(promo.Code)
	for _, p := range s.promos {
		if p.Code == promo.Code {
			return repositories.ErrDuplicate
		}
	}
	promo.ID = len(s.promos) + 1
	promo.IsActive = true
	s.promos = append(s.promos, *promo)
	return nil
}

func (s *memPromoStore) Delete(ctx context.Context, id int) error {
	for i := range s.promos {
		if s.promos[i].ID == id && s.promos[i].IsActive {
			s.promos[i].IsActive = false
			return nil
		}
	}
	return repositories.ErrNotFound
}

func TestPromoLifecycle(t *testing.T) {
	svc := NewPromoService(&memPromoStore{})
	ctx := context.Background()

	active, err := svc.GetActive(ctx)
	require.NoError(t, err)
	assert.NotNil(t, active)
	assert.Empty(t, active)

	promo, err := svc.Create(ctx, models.PromoRequest{Title: " Weekend ", Code: "weekend10"})
	require.NoError(t, err)
	assert.Equal(t, "Weekend", promo.Title)
	assert.Equal(t, "WEEKEND10", promo.Code)

	_, err = svc.Create(ctx, models.PromoRequest{Title: "Again", Code: "Weekend10"})
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, svc.Delete(ctx, promo.ID))
	assert.ErrorIs(t, svc.Delete(ctx, promo.ID), ErrPromoNotFound)

	active, err = svc.GetActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestCreatePromoValidatesCode(t *testing.T) {
	svc := NewPromoService(&memPromoStore{})

	_, err := svc.Create(context.Background(), models.PromoRequest{Title: "Sale", Code: "two words"})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "code", verr.Field)
}
