package models

import "time"

type ItemRequest struct {
	ID          int64     `json:"id" db:"id"`
	Description string    `json:"description" db:"description"`
	RequestorID int64     `json:"-" db:"requestor_id"`
	Created     time.Time `json:"created" db:"created"`
	Items       []Item    `json:"items" db:"-"`
}

type NewItemRequest struct {
	Description string `json:"description"`
}
