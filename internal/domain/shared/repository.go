package shared

// ListResult is a full (unpaginated) read result. Count is reported alongside
// the rows so an empty list can be told apart from a filtered-down one.
type ListResult[T any] struct {
	Count int `json:"count"`
	Items []T `json:"items"`
}

// NewListResult wraps items with their count
func NewListResult[T any](items []T) ListResult[T] {
	if items == nil {
		items = make([]T, 0)
	}
	return ListResult[T]{
		Count: len(items),
		Items: items,
	}
}
