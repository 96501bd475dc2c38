package shared

// Page is the uniform list response: the slice plus the unpaginated total.
type Page[T any] struct {
	Data  []T   `json:"data"`
	Total int64 `json:"total"`
}

func NewPage[T any](data []T, total int64) *Page[T] {
	return &Page[T]{Data: data, Total: total}
}
