package services

import (
	"context"
	"errors"
	"strings"

	"storefront/models"
	"storefront/repositories"
)

type PromoStore interface {
	GetActive(ctx context.Context) ([]models.Promo, error)
	Create(ctx context.Context, promo *models.Promo) error
	Delete(ctx context.Context, id int) error
}

type PromoService struct {
	promos PromoStore
}

func NewPromoService(promos PromoStore) *PromoService {
	return &PromoService{promos: promos}
}

func (s *PromoService) GetActive(ctx context.Context) ([]models.Promo, error) {
	promos, err := s.promos.GetActive(ctx)
	if promos == nil && err == nil {
		promos = []models.Promo{}
	}
	return promos, err
}

func (s *PromoService) Create(ctx context.Context, req models.PromoRequest) (*models.Promo, error) {
	promo := &models.Promo{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Code:        strings.TrimSpace(req.Code),
	}
	if promo.Title == "" {
		return nil, invalid("title", "is required")
	}
	if promo.Code == "" || strings.ContainsAny(promo.Code, " \t") {
		return nil, invalid("code", "must be a single word")
	}
	if err := s.promos.Create(ctx, promo); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, invalid("code", "promo code %q already exists", strings.ToUpper(promo.Code))
		}
		return nil, err
	}
	return promo, nil
}

func (s *PromoService) Delete(ctx context.Context, id int) error {
	err := s.promos.Delete(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrPromoNotFound
	}
	return err
}
