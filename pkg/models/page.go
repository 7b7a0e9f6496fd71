package models

// PageRequest addresses one page of an ordered collection: items
// [Page*Size, Page*Size+Size).
type PageRequest struct {
	Page int `json:"page"`
	Size int `json:"size"`
}

// Offset returns the index of the first item covered by the request.
func (p PageRequest) Offset() int64 {
	return int64(p.Page) * int64(p.Size)
}

// PageInfo describes the position of a page within its collection.
type PageInfo struct {
	Number        int   `json:"number"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"total_elements"`
	TotalPages    int64 `json:"total_pages"`
}

// Page is one page of results plus its position.
type Page[T any] struct {
	Content []T      `json:"content"`
	Info    PageInfo `json:"page"`
}

// NewPage builds a page, computing TotalPages from total and the request size.
func NewPage[T any](content []T, req PageRequest, total int64) *Page[T] {
	if content == nil {
		content = []T{}
	}
	var pages int64
	if req.Size > 0 {
		pages = (total + int64(req.Size) - 1) / int64(req.Size)
	}
	return &Page[T]{
		Content: content,
		Info: PageInfo{
			Number:        req.Page,
			Size:          req.Size,
			TotalElements: total,
			TotalPages:    pages,
		},
	}
}
