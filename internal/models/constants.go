package models

const (
	// HeaderUserID carries the acting user's id on item, booking and request endpoints.
	HeaderUserID = "X-Sharer-User-Id"

	DefaultPageFrom = 0
	DefaultPageSize = 10
	MaxPageSize     = 200
)
