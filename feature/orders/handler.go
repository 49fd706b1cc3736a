package orders

import (
	"strconv"

	"order-importer/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for order imports and queries.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the orders routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/orders")
	group.Post("/import", h.HandleImport)
	group.Get("/", h.HandleListOrders)
	group.Get("/:id", h.HandleGetOrder)
}

// HandleImport triggers an import of an order document from storage.
// @Summary Import Orders
// @Description Fetches an order XML document from the storage bucket and reconciles it into the database. The batch is atomic: on any failure nothing is persisted.
// @Tags orders
// @Accept json
// @Produce json
// @Param object query string true "Object name of the XML document in the bucket"
// @Success 200 {object} map[string]interface{} "Import Result"
// @Failure 400 {object} map[string]string "Missing object parameter"
// @Failure 500 {object} map[string]string "Reconciliation failed"
// @Router /orders/import [post]
func (h *Handler) HandleImport(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	objectName := c.Query("object")
	if objectName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "missing required query parameter: object",
		})
	}

	l.Info("Import requested", zap.String("object", objectName))

	orders, err := h.service.ImportObject(c.Context(), objectName)
	if err != nil {
		l.Error("Import failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"imported": len(orders),
		"orders":   orders,
	})
}

// HandleListOrders returns all committed orders.
// @Summary List Orders
// @Description Lists all orders with their items.
// @Tags orders
// @Accept json
// @Produce json
// @Success 200 {array} models.Order "Orders"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /orders [get]
func (h *Handler) HandleListOrders(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	orders, err := h.service.ListOrders(c.Context())
	if err != nil {
		l.Error("Listing orders failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(orders)
}

// HandleGetOrder returns a single order by id.
// @Summary Get Order
// @Description Gets one order with its items by id.
// @Tags orders
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} models.Order "Order"
// @Failure 400 {object} map[string]string "Invalid ID"
// @Failure 404 {object} map[string]string "Not Found"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /orders/{id} [get]
func (h *Handler) HandleGetOrder(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	id, err := strconv.Atoi(c.Params("id"))
	if err != nil || id < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid order id",
		})
	}

	order, err := h.service.GetOrder(c.Context(), uint(id))
	if err != nil {
		l.Error("Loading order failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if order == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "order not found",
		})
	}

	return c.JSON(order)
}
