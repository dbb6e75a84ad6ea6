package models

import "time"

type Item struct {
	ID          int64  `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description" db:"description"`
	Available   bool   `json:"available" db:"available"`
	OwnerID     int64  `json:"ownerId" db:"owner_id"`
	RequestID   *int64 `json:"requestId,omitempty" db:"request_id"`
}

// ItemPatch holds the fields of a partial item update; nil means unchanged.
type ItemPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Available   *bool   `json:"available"`
}

func (p ItemPatch) Apply(i *Item) {
	if p.Name != nil {
		i.Name = *p.Name
	}
	if p.Description != nil {
		i.Description = *p.Description
	}
	if p.Available != nil {
		i.Available = *p.Available
	}
}

// NewItem is the input of item creation.
type NewItem struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Available   *bool  `json:"available"`
	RequestID   *int64 `json:"requestId"`
}

// BookingRef is the short booking form shown on an owner's item view.
type BookingRef struct {
	ID       int64     `json:"id"`
	BookerID int64     `json:"bookerId"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
}

// ItemDetails is an item enriched with booking slots and comments.
type ItemDetails struct {
	Item
	LastBooking *BookingRef `json:"lastBooking,omitempty"`
	NextBooking *BookingRef `json:"nextBooking,omitempty"`
	Comments    []Comment   `json:"comments"`
}
