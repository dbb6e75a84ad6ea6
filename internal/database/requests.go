package database

import (
	"context"
	"fmt"

	"shareit/internal/models"
)

var requestColumns = []interface{}{"id", "description", "requestor_id", "created"}

func (db *DB) CreateRequest(ctx context.Context, req *models.ItemRequest) error {
	req.Created = req.Created.UTC()
	id, err := db.insertReturningID(ctx,
		`INSERT INTO requests (description, requestor_id, created) VALUES (?, ?, ?) RETURNING id`,
		req.Description, req.RequestorID, req.Created)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.ID = id
	return nil
}

func (db *DB) GetRequestByID(ctx context.Context, id int64) (*models.ItemRequest, error) {
	var req models.ItemRequest
	err := db.get(ctx, &req,
		`SELECT id, description, requestor_id, created FROM requests WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (db *DB) GetRequestsByRequestor(ctx context.Context, requestorID int64) ([]*models.ItemRequest, error) {
	reqs := []*models.ItemRequest{}
	ds := db.dialect.From("requests").
		Select(requestColumns...).
		Where(col("requestor_id").Eq(requestorID)).
		Order(col("created").Desc(), col("id").Desc())
	if err := db.selectDataset(ctx, &reqs, ds); err != nil {
		return nil, fmt.Errorf("failed to get own requests: %w", err)
	}
	return reqs, nil
}

func (db *DB) GetRequestsOfOthers(ctx context.Context, userID int64, page models.Page) ([]*models.ItemRequest, error) {
	reqs := []*models.ItemRequest{}
	ds := db.dialect.From("requests").
		Select(requestColumns...).
		Where(col("requestor_id").Neq(userID)).
		Order(col("created").Desc(), col("id").Desc())
	if err := db.selectDataset(ctx, &reqs, paginate(ds, page)); err != nil {
		return nil, fmt.Errorf("failed to get requests of others: %w", err)
	}
	return reqs, nil
}
