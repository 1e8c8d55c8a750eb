package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/models"
)

type PromoManager interface {
	GetActive(ctx context.Context) ([]models.Promo, error)
	Create(ctx context.Context, req models.PromoRequest) (*models.Promo, error)
	Delete(ctx context.Context, id int) error
}

type PromoController struct {
	promos PromoManager
}

func NewPromoController(promos PromoManager) *PromoController {
	return &PromoController{promos: promos}
}

// @Summary Get promos
// @Tags Promos
// @Produce json
// @Success 200 {object} models.Response{data=[]models.Promo}
// @Router /promos [get]
func (ctrl *PromoController) GetAllPromos(c *gin.Context) {
	promos, err := ctrl.promos.GetActive(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Promos retrieved", promos)
}

// @Summary Create promo
// @Tags Admin - Promos
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body models.PromoRequest true "Promo"
// @Success 201 {object} models.Response{data=models.Promo}
// @Router /admin/promos [post]
func (ctrl *PromoController) CreatePromo(c *gin.Context) {
	var req models.PromoRequest
	if err := c.ShouldBind(&req); err != nil {
		badRequest(c, "Invalid request", err)
		return
	}
	promo, err := ctrl.promos.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusCreated, "Promo created successfully", promo)
}

// @Summary Delete promo
// @Tags Admin - Promos
// @Security BearerAuth
// @Produce json
// @Param id path int true "Promo ID"
// @Success 200 {object} models.Response
// @Router /admin/promos/{id} [delete]
func (ctrl *PromoController) DeletePromo(c *gin.Context) {
	id, valid := paramID(c, "id")
	if !valid {
		return
	}
	if err := ctrl.promos.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	ok(c, http.StatusOK, "Promo deleted successfully", nil)
}
