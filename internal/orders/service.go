package orders

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"ms-registration/internal/logger"
	"ms-registration/internal/models"
)

var (
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidItems    = errors.New("invalid items payload")
	ErrItemUnavailable = errors.New("menu item unavailable")
	ErrDuplicateItem   = errors.New("menu item already exists")
)

type DBLayer interface {
	UserExists(userID string) (bool, error)
	GetAvailableMenuItems() ([]models.MenuItem, error)
	GetMenuItemByID(id string) (*models.MenuItem, error)
	MenuItemNameExists(name string) (bool, error)
	CreateMenuItem(item models.MenuItem) error
	ReplaceOrderItems(userID string, items []models.OrderItem) error
	GetUserOrders() ([]models.UserOrder, error)
}

type EventPublisher interface {
	PublishOrderPlaced(userID string, lines []models.OrderLine) error
}

type Service struct {
	DB     DBLayer
	Events EventPublisher
	Logger *logger.Logger
}

func NewService(db DBLayer, events EventPublisher, log *logger.Logger) *Service {
	return &Service{DB: db, Events: events, Logger: log}
}

// PlaceOrder validates every line against the catalog and replaces the
// user's order wholesale. Any invalid line rejects the whole submission and
// leaves the prior order unchanged.
func (s *Service) PlaceOrder(userID string, items []models.OrderItem) ([]models.OrderLine, error) {
	exists, err := s.DB.UserExists(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check user %s: %w", userID, err)
	}
	if !exists {
		return nil, ErrUserNotFound
	}

	if len(items) == 0 {
		return nil, ErrInvalidItems
	}

	rows := make([]models.OrderItem, 0, len(items))
	lines := make([]models.OrderLine, 0, len(items))
	for _, item := range items {
		if item.MenuItemID == "" || item.Quantity <= 0 {
			return nil, ErrInvalidItems
		}

		menuItem, err := s.DB.GetMenuItemByID(item.MenuItemID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, fmt.Errorf("%w: %s", ErrItemUnavailable, item.MenuItemID)
			}
			return nil, fmt.Errorf("failed to check menu item %s: %w", item.MenuItemID, err)
		}
		if !menuItem.Available {
			return nil, fmt.Errorf("%w: %s", ErrItemUnavailable, menuItem.Name)
		}

		rows = append(rows, models.OrderItem{
			ID:         uuid.NewString(),
			UserID:     userID,
			MenuItemID: item.MenuItemID,
			Quantity:   item.Quantity,
		})
		lines = append(lines, models.OrderLine{
			MenuItemID: menuItem.ID,
			Name:       menuItem.Name,
			Price:      menuItem.Price,
			Quantity:   item.Quantity,
		})
	}

	if err := s.DB.ReplaceOrderItems(userID, rows); err != nil {
		return nil, fmt.Errorf("failed to store order: %w", err)
	}

	if s.Events != nil {
		if err := s.Events.PublishOrderPlaced(userID, lines); err != nil {
			s.Logger.Warn("KAFKA", fmt.Sprintf("failed to publish order event for %s: %v", userID, err))
		}
	}

	s.Logger.Info("ORDER", fmt.Sprintf("order with %d lines placed for user %s", len(lines), userID))
	return lines, nil
}

// ListOrders returns every intent-to-eat user with their expanded order.
func (s *Service) ListOrders() ([]models.UserOrder, error) {
	return s.DB.GetUserOrders()
}

func (s *Service) Menu() ([]models.MenuItem, error) {
	return s.DB.GetAvailableMenuItems()
}

// AddMenuItem creates a catalog entry, rejecting duplicate names.
func (s *Service) AddMenuItem(name string, price float64) (*models.MenuItem, error) {
	if name == "" || price < 0 {
		return nil, ErrInvalidItems
	}

	taken, err := s.DB.MenuItemNameExists(name)
	if err != nil {
		return nil, fmt.Errorf("failed to check menu name: %w", err)
	}
	if taken {
		return nil, ErrDuplicateItem
	}

	item := models.MenuItem{
		ID:        uuid.NewString(),
		Name:      name,
		Price:     price,
		Available: true,
	}
	if err := s.DB.CreateMenuItem(item); err != nil {
		return nil, fmt.Errorf("failed to create menu item: %w", err)
	}
	return &item, nil
}
