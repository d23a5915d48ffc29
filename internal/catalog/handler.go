package catalog

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/aryankhatri/storefront-backend/internal/commerce"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(app *fiber.App) {
	app.Get("/api/v1/products", h.getProducts)
	app.Get("/api/v1/products/:handle", h.getProduct)
	app.Get("/api/v1/collections/:handle", h.getCollection)
}

func (h *Handler) getProducts(c *fiber.Ctx) error {
	products, err := h.service.List(c.Context())
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": "catalog unavailable"})
	}
	return c.JSON(products)
}

func (h *Handler) getProduct(c *fiber.Ctx) error {
	p, err := h.service.GetByHandle(c.Context(), c.Params("handle"))
	if errors.Is(err, commerce.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "product not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": "catalog unavailable"})
	}
	return c.JSON(p)
}

func (h *Handler) getCollection(c *fiber.Ctx) error {
	products, err := h.service.Collection(c.Context(), c.Params("handle"))
	if errors.Is(err, commerce.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "collection not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"message": "catalog unavailable"})
	}
	return c.JSON(products)
}
