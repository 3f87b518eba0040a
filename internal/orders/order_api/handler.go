package order_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-registration/internal/logger"
	"ms-registration/internal/models"
	"ms-registration/internal/orders"
	"ms-registration/internal/utils"
)

// Handler serves the /api/orders surface: order submission, the kitchen
// listing and the menu catalog.
type Handler struct {
	Orders *orders.Service
	Logger *logger.Logger
}

func NewHandler(svc *orders.Service, log *logger.Logger) *Handler {
	return &Handler{Orders: svc, Logger: log}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/orders", func(r chi.Router) {
		r.Post("/add/{id}", h.AddOrder)
		r.Get("/", h.ListOrders)
		r.Get("/menu", h.GetMenu)
		r.Post("/menu/add", h.AddMenuItem)
	})
}

func (h *Handler) AddOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req struct {
		Items []models.OrderItem `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("API", fmt.Sprintf("AddOrder: failed to decode request body: %v", err))
		utils.Message(w, http.StatusBadRequest, "Invalid request body. Expected items array")
		return
	}

	lines, err := h.Orders.PlaceOrder(id, req.Items)
	if err != nil {
		switch {
		case errors.Is(err, orders.ErrUserNotFound):
			utils.Message(w, http.StatusNotFound, "User not Found")
		case errors.Is(err, orders.ErrInvalidItems):
			utils.Message(w, http.StatusBadRequest, "Invalid request body. Expected items array")
		case errors.Is(err, orders.ErrItemUnavailable):
			utils.Message(w, http.StatusBadRequest, err.Error())
		default:
			h.Logger.Error("API", fmt.Sprintf("AddOrder: %v", err))
			utils.WriteJSON(w, http.StatusInternalServerError, map[string]string{
				"message": "Internal Server Error",
				"error":   err.Error(),
			})
		}
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message":      "Order added successfully",
		"orderedItems": lines,
	})
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	userOrders, err := h.Orders.ListOrders()
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListOrders: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, map[string]string{
			"message": "Internal Server Error",
			"error":   err.Error(),
		})
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"users": userOrders})
}

func (h *Handler) GetMenu(w http.ResponseWriter, r *http.Request) {
	items, err := h.Orders.Menu()
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetMenu: %v", err))
		utils.ServerError(w, err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message":   "Menu fetched successfully",
		"menuItems": items,
	})
}

func (h *Handler) AddMenuItem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string  `json:"name"`
		Price float64 `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("API", fmt.Sprintf("AddMenuItem: failed to decode request body: %v", err))
		utils.Message(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	item, err := h.Orders.AddMenuItem(req.Name, req.Price)
	if err != nil {
		switch {
		case errors.Is(err, orders.ErrDuplicateItem):
			utils.Message(w, http.StatusBadRequest, "Menu item already exists")
		case errors.Is(err, orders.ErrInvalidItems):
			utils.Message(w, http.StatusBadRequest, "Name and a non-negative price are required")
		default:
			h.Logger.Error("API", fmt.Sprintf("AddMenuItem: %v", err))
			utils.ServerError(w, err)
		}
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message":  "Menu item added",
		"menuItem": item,
	})
}
