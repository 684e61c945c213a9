package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-cohort-engine/internal/middleware"
	"github.com/noah-isme/sma-cohort-engine/internal/models"
	"github.com/noah-isme/sma-cohort-engine/pkg/response"
)

type rosterService interface {
	OfferingRoster(ctx context.Context, offeringID string) (*models.RosterResolution, error)
	StudentOfferings(ctx context.Context, studentID string) ([]models.SubjectOffering, error)
}

// RosterHandler exposes roster resolution.
type RosterHandler struct {
	service rosterService
}

// NewRosterHandler constructs the handler.
func NewRosterHandler(service rosterService) *RosterHandler {
	return &RosterHandler{service: service}
}

// Offering godoc
// @Summary Resolved roster of an offering
// @Tags Rosters
// @Produce json
// @Param id path string true "Offering ID"
// @Success 200 {object} response.Envelope
// @Router /offerings/{id}/roster [get]
func (h *RosterHandler) Offering(c *gin.Context) {
	resolution, err := h.service.OfferingRoster(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resolution)
}

// Student godoc
// @Summary Offerings a student is accountable for
// @Tags Rosters
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id}/offerings [get]
func (h *RosterHandler) Student(c *gin.Context) {
	offerings, err := h.service.StudentOfferings(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	if offerings == nil {
		offerings = []models.SubjectOffering{}
	}
	middleware.SetMeta(c, "total", len(offerings))
	response.JSON(c, http.StatusOK, offerings, middleware.Meta(c))
}
