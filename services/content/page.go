package content

// defaultLimit mirrors the page size the old service reported when a request
// did not name one.
const defaultLimit = 1000

// Page is the find-result envelope.
type Page[T any] struct {
	Total int `json:"total"`
	Limit int `json:"limit"`
	Skip  int `json:"skip"`
	Data  []T `json:"data"`
}

func newPage[T any](data []T) *Page[T] {
	if data == nil {
		data = []T{}
	}
	return &Page[T]{
		Total: len(data),
		Limit: defaultLimit,
		Skip:  0,
		Data:  data,
	}
}
