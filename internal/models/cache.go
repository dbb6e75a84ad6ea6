package models

// CachedResponse is an upstream HTTP response kept by the gateway cache.
type CachedResponse struct {
	Status      int    `json:"status"`
	ContentType string `json:"content_type"`
	Body        []byte `json:"body"`
}
