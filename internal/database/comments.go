package database

import (
	"context"
	"fmt"

	"shareit/internal/models"

	"github.com/doug-martin/goqu/v9"
)

func (db *DB) CreateComment(ctx context.Context, comment *models.Comment) error {
	comment.Created = comment.Created.UTC()
	id, err := db.insertReturningID(ctx,
		`INSERT INTO comments (text, item_id, author_id, created) VALUES (?, ?, ?, ?) RETURNING id`,
		comment.Text, comment.ItemID, comment.AuthorID, comment.Created)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	comment.ID = id
	return nil
}

// GetCommentsByItems returns comments of the given items, oldest first, with author names.
func (db *DB) GetCommentsByItems(ctx context.Context, itemIDs []int64) ([]*models.Comment, error) {
	comments := []*models.Comment{}
	if len(itemIDs) == 0 {
		return comments, nil
	}
	ds := db.dialect.From(goqu.T("comments").As("c")).
		Join(goqu.T("users").As("u"), goqu.On(col("u.id").Eq(col("c.author_id")))).
		Select(
			col("c.id"),
			col("c.text"),
			col("c.item_id"),
			col("c.author_id"),
			col("u.name").As("author_name"),
			col("c.created"),
		).
		Where(col("c.item_id").In(itemIDs)).
		Order(col("c.created").Asc(), col("c.id").Asc())
	if err := db.selectDataset(ctx, &comments, ds); err != nil {
		return nil, fmt.Errorf("failed to get comments: %w", err)
	}
	return comments, nil
}
