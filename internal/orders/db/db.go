package db

import (
	"context"
	"database/sql"

	"github.com/uptrace/bun"

	"ms-registration/internal/models"
)

// DB stores the menu catalog and per-user order items.
type DB struct {
	Bun *bun.DB
}

func (d *DB) UserExists(userID string) (bool, error) {
	return d.Bun.NewSelect().
		Model((*models.User)(nil)).
		Where("id = ?", userID).
		Exists(context.Background())
}

// ---------------- MENU ----------------

func (d *DB) GetAvailableMenuItems() ([]models.MenuItem, error) {
	var items []models.MenuItem
	err := d.Bun.NewSelect().
		Model(&items).
		Where("available = ?", true).
		Order("name ASC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (d *DB) GetMenuItemByID(id string) (*models.MenuItem, error) {
	var item models.MenuItem
	err := d.Bun.NewSelect().
		Model(&item).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (d *DB) MenuItemNameExists(name string) (bool, error) {
	return d.Bun.NewSelect().
		Model((*models.MenuItem)(nil)).
		Where("name = ?", name).
		Exists(context.Background())
}

func (d *DB) CreateMenuItem(item models.MenuItem) error {
	_, err := d.Bun.NewInsert().Model(&item).Exec(context.Background())
	return err
}

// ---------------- ORDERS ----------------

// ReplaceOrderItems swaps a user's order wholesale and flags intent-to-eat,
// all inside one transaction so a failed submission leaves the prior order
// untouched.
func (d *DB) ReplaceOrderItems(userID string, items []models.OrderItem) error {
	ctx := context.Background()
	return d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewDelete().
			Model((*models.OrderItem)(nil)).
			Where("user_id = ?", userID).
			Exec(ctx)
		if err != nil {
			return err
		}

		if len(items) > 0 {
			_, err = tx.NewInsert().Model(&items).Exec(ctx)
			if err != nil {
				return err
			}
		}

		_, err = tx.NewUpdate().
			Model((*models.User)(nil)).
			Set("wants_food = ?", true).
			Where("id = ?", userID).
			Exec(ctx)
		return err
	})
}

func (d *DB) GetOrderItemsByUser(userID string) ([]models.OrderItem, error) {
	var items []models.OrderItem
	err := d.Bun.NewSelect().
		Model(&items).
		Where("user_id = ?", userID).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return items, nil
}

type orderLineRow struct {
	UserID     string  `bun:"user_id"`
	MenuItemID string  `bun:"menu_item_id"`
	Name       string  `bun:"name"`
	Price      float64 `bun:"price"`
	Quantity   int     `bun:"quantity"`
}

// GetUserOrders returns every wantsFood user with their order expanded
// against the catalog.
func (d *DB) GetUserOrders() ([]models.UserOrder, error) {
	ctx := context.Background()

	var users []models.User
	err := d.Bun.NewSelect().
		Model(&users).
		Where("wants_food = ?", true).
		Order("name ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	if len(users) == 0 {
		return []models.UserOrder{}, nil
	}

	userIDs := make([]string, len(users))
	for i, user := range users {
		userIDs[i] = user.ID
	}

	var rows []orderLineRow
	err = d.Bun.NewSelect().
		Table("order_items").
		Column("order_items.user_id", "order_items.menu_item_id", "order_items.quantity").
		ColumnExpr("menu_items.name, menu_items.price").
		Join("JOIN menu_items ON menu_items.id = order_items.menu_item_id").
		Where("order_items.user_id IN (?)", bun.In(userIDs)).
		Scan(ctx, &rows)
	if err != nil {
		return nil, err
	}

	linesByUser := make(map[string][]models.OrderLine)
	for _, row := range rows {
		linesByUser[row.UserID] = append(linesByUser[row.UserID], models.OrderLine{
			MenuItemID: row.MenuItemID,
			Name:       row.Name,
			Price:      row.Price,
			Quantity:   row.Quantity,
		})
	}

	result := make([]models.UserOrder, len(users))
	for i, user := range users {
		result[i] = models.UserOrder{
			Name:         user.Name,
			OrderedItems: linesByUser[user.ID],
		}
		if result[i].OrderedItems == nil {
			result[i].OrderedItems = []models.OrderLine{}
		}
	}
	return result, nil
}
