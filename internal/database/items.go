package database

import (
	"context"
	"fmt"
	"strings"

	"shareit/internal/models"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
)

var itemColumns = []interface{}{"id", "name", "description", "available", "owner_id", "request_id"}

func col(name string) exp.IdentifierExpression {
	return goqu.I(name)
}

// paginate applies an offset window; an unbounded page leaves the dataset as is.
func paginate(ds *goqu.SelectDataset, page models.Page) *goqu.SelectDataset {
	if page.Unbounded() {
		return ds
	}
	return ds.Limit(uint(page.Size)).Offset(uint(page.From))
}

func (db *DB) CreateItem(ctx context.Context, item *models.Item) error {
	id, err := db.insertReturningID(ctx,
		`INSERT INTO items (name, description, available, owner_id, request_id)
		 VALUES (?, ?, ?, ?, ?) RETURNING id`,
		item.Name, item.Description, item.Available, item.OwnerID, item.RequestID)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}
	item.ID = id
	return nil
}

func (db *DB) UpdateItem(ctx context.Context, item *models.Item) error {
	err := db.execAffecting(ctx,
		`UPDATE items SET name = ?, description = ?, available = ? WHERE id = ?`,
		item.Name, item.Description, item.Available, item.ID)
	if err != nil && err != ErrNotFound {
		return fmt.Errorf("failed to update item: %w", err)
	}
	return err
}

func (db *DB) GetItemByID(ctx context.Context, id int64) (*models.Item, error) {
	var item models.Item
	err := db.get(ctx, &item,
		`SELECT id, name, description, available, owner_id, request_id FROM items WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (db *DB) GetItemsByOwner(ctx context.Context, ownerID int64, page models.Page) ([]*models.Item, error) {
	items := []*models.Item{}
	ds := db.dialect.From("items").
		Select(itemColumns...).
		Where(col("owner_id").Eq(ownerID)).
		Order(col("id").Asc())
	if err := db.selectDataset(ctx, &items, paginate(ds, page)); err != nil {
		return nil, fmt.Errorf("failed to get owner items: %w", err)
	}
	return items, nil
}

// SearchAvailableItems matches text as a case-insensitive substring of name or description.
func (db *DB) SearchAvailableItems(ctx context.Context, text string, page models.Page) ([]*models.Item, error) {
	items := []*models.Item{}
	pattern := "%" + escapeLike(strings.ToLower(text)) + "%"
	ds := db.dialect.From("items").
		Select(itemColumns...).
		Where(
			col("available").Eq(true),
			goqu.Or(
				goqu.L(`LOWER(name) LIKE ? ESCAPE '\'`, pattern),
				goqu.L(`LOWER(description) LIKE ? ESCAPE '\'`, pattern),
			),
		).
		Order(col("id").Asc())
	if err := db.selectDataset(ctx, &items, paginate(ds, page)); err != nil {
		return nil, fmt.Errorf("failed to search items: %w", err)
	}
	return items, nil
}

func (db *DB) GetItemsByRequestIDs(ctx context.Context, requestIDs []int64) ([]*models.Item, error) {
	items := []*models.Item{}
	if len(requestIDs) == 0 {
		return items, nil
	}
	ds := db.dialect.From("items").
		Select(itemColumns...).
		Where(col("request_id").In(requestIDs)).
		Order(col("id").Asc())
	if err := db.selectDataset(ctx, &items, ds); err != nil {
		return nil, fmt.Errorf("failed to get items by requests: %w", err)
	}
	return items, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
