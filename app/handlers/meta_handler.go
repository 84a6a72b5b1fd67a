// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"github.com/gofiber/fiber/v3"
	"github.com/shortsintel/shorts-intel-hub/app/dto"
	"github.com/shortsintel/shorts-intel-hub/models"
)

// MetaHandlerInterface defines the contract for reference-data handlers.
type MetaHandlerInterface interface {
	Markets(c fiber.Ctx) error
	Demographics(c fiber.Ctx) error
}

// MetaHandler serves the static reference data clients need to build segment
// selectors.
type MetaHandler struct{}

// NewMetaHandler creates a new meta handler.
func NewMetaHandler() *MetaHandler {
	return &MetaHandler{}
}

// Markets lists the supported markets.
func (h *MetaHandler) Markets(c fiber.Ctx) error {
	markets := make([]dto.MarketInfo, 0, len(models.AllMarkets()))
	for _, m := range models.AllMarkets() {
		markets = append(markets, dto.MarketInfo{
			Code:     string(m),
			Name:     models.MarketName(m),
			Timezone: models.MarketTimezone(m),
		})
	}
	return c.Status(fiber.StatusOK).JSON(dto.APIResponse{
		Success: true,
		Message: "Markets retrieved",
		Data:    markets,
	})
}

// Demographics lists the supported (gender, age band) pairs.
func (h *MetaHandler) Demographics(c fiber.Ctx) error {
	demos := make([]dto.DemographicInfo, 0, len(models.AllGenders())*len(models.AllAgeBands()))
	for _, g := range models.AllGenders() {
		for _, a := range models.AllAgeBands() {
			demos = append(demos, dto.DemographicInfo{
				Gender: string(g),
				Age:    string(a),
				Label:  string(g) + " " + string(a),
			})
		}
	}
	return c.Status(fiber.StatusOK).JSON(dto.APIResponse{
		Success: true,
		Message: "Demographics retrieved",
		Data:    demos,
	})
}
