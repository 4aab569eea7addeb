package dto

// InvalidateResponse reports the outcome of a cache invalidation.
type InvalidateResponse struct {
	Invalidated int    `json:"invalidated"`
	Key         string `json:"key"`
}
