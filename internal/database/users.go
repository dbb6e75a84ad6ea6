package database

import (
	"context"
	"fmt"

	"shareit/internal/models"
)

func (db *DB) CreateUser(ctx context.Context, user *models.User) error {
	id, err := db.insertReturningID(ctx,
		`INSERT INTO users (name, email) VALUES (?, ?) RETURNING id`,
		user.Name, user.Email)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	user.ID = id
	return nil
}

func (db *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := db.get(ctx, &user, `SELECT id, name, email FROM users WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return &user, nil
}

func (db *DB) GetAllUsers(ctx context.Context) ([]*models.User, error) {
	users := []*models.User{}
	ds := db.dialect.From("users").Select("id", "name", "email").Order(col("id").Asc())
	if err := db.selectDataset(ctx, &users, ds); err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	return users, nil
}

func (db *DB) UpdateUser(ctx context.Context, user *models.User) error {
	err := db.execAffecting(ctx,
		`UPDATE users SET name = ?, email = ? WHERE id = ?`,
		user.Name, user.Email, user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		if err == ErrNotFound {
			return err
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

func (db *DB) DeleteUser(ctx context.Context, id int64) error {
	err := db.execAffecting(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil && err != ErrNotFound {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return err
}
