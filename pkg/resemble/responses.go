package resemble

// Response is the envelope shared by every API response.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func (r *Response) failure() (string, bool) {
	return r.Message, !r.Success
}

// envelope is implemented by every response type through Response.
type envelope interface {
	failure() (message string, failed bool)
}

// ReadResponse wraps a single fetched item.
type ReadResponse[T any] struct {
	Response
	Item *T `json:"item"`
}

// WriteResponse wraps a created item. Item is set when the write succeeds.
type WriteResponse[T any] struct {
	Response
	Item *T `json:"item,omitempty"`
}

// UpdateResponse wraps an updated item. Item is set when the update succeeds.
type UpdateResponse[T any] struct {
	Response
	Item *T `json:"item,omitempty"`
}

// DeleteResponse is returned by delete operations.
type DeleteResponse struct {
	Response
}

// PaginationResponse wraps one page of a listing. Pages start at 1.
type PaginationResponse[T any] struct {
	Response
	Page     int `json:"page"`
	NumPages int `json:"num_pages"`
	PageSize int `json:"page_size"`
	Items    []T `json:"items"`
}

// HasNext reports whether a later page exists.
func (p *PaginationResponse[T]) HasNext() bool {
	return p.Page < p.NumPages
}
