package models

import (
	"strings"
	"time"
)

type BookingStatus string

const (
	StatusWaiting  BookingStatus = "WAITING"
	StatusApproved BookingStatus = "APPROVED"
	StatusRejected BookingStatus = "REJECTED"
	// StatusCanceled is part of the enumeration but no operation assigns it.
	StatusCanceled BookingStatus = "CANCELED"
)

type Booking struct {
	ID       int64         `json:"id"`
	Start    time.Time     `json:"start"`
	End      time.Time     `json:"end"`
	Status   BookingStatus `json:"status"`
	Item     Item          `json:"item"`
	Booker   User          `json:"booker"`
	Version  int64         `json:"-"`
	ItemID   int64         `json:"-"`
	BookerID int64         `json:"-"`
}

// NewBooking is the input of booking creation.
type NewBooking struct {
	ItemID int64     `json:"itemId"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
}

// UnmarshalJSON accepts start and end in any form ParseTimestamp understands.
func (b *NewBooking) UnmarshalJSON(data []byte) error {
	var aux struct {
		ItemID int64      `json:"itemId"`
		Start  *Timestamp `json:"start"`
		End    *Timestamp `json:"end"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*b = NewBooking{ItemID: aux.ItemID}
	if aux.Start != nil {
		b.Start = aux.Start.Time
	}
	if aux.End != nil {
		b.End = aux.End.Time
	}
	return nil
}

// Ref returns the short form used for last/next booking slots.
func (b *Booking) Ref() *BookingRef {
	return &BookingRef{ID: b.ID, BookerID: b.BookerID, Start: b.Start, End: b.End}
}

// BookingState selects bookings for listing, evaluated against "now".
type BookingState string

const (
	StateAll      BookingState = "ALL"
	StateCurrent  BookingState = "CURRENT"
	StatePast     BookingState = "PAST"
	StateFuture   BookingState = "FUTURE"
	StateWaiting  BookingState = "WAITING"
	StateRejected BookingState = "REJECTED"
)

var bookingStates = []BookingState{StateAll, StateCurrent, StatePast, StateFuture, StateWaiting, StateRejected}

// ParseBookingState matches raw case-insensitively. Empty input means ALL.
func ParseBookingState(raw string) (BookingState, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return StateAll, true
	}
	for _, s := range bookingStates {
		if strings.EqualFold(string(s), raw) {
			return s, true
		}
	}
	return "", false
}

// BookingFilter selects bookings of one booker or of all items of one owner.
type BookingFilter struct {
	BookerID int64
	OwnerID  int64
	State    BookingState
	Now      time.Time
	Page     Page
}
