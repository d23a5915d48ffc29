package shipping

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
)

type Handler struct {
	service *Service
}

func NewHandler(s *Service) *Handler {
	return &Handler{service: s}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/v1/shipping/rates", h.getRates)
}

func (h *Handler) getRates(c *fiber.Ctx) error {
	pincode := c.Query("pincode")
	weight, _ := strconv.ParseFloat(c.Query("weight"), 64)

	rates, err := h.service.Rates(c.Context(), pincode, weight)
	switch {
	case errors.Is(err, ErrInvalidPincode):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "please enter a valid 6-digit pincode"})
	case errors.Is(err, ErrUnavailable):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": "shipping rates are unavailable right now"})
	case err != nil:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": err.Error()})
	}

	if len(rates) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "no couriers deliver to this pincode"})
	}
	return c.JSON(rates)
}
