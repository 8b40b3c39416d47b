package request

// PostMessageRequest represents a message creation request
type PostMessageRequest struct {
	Text string `json:"text" binding:"required,min=1,max=5000"`
}

// PaginationRequest represents pagination parameters
type PaginationRequest struct {
	Page  int `form:"page,default=1" binding:"omitempty,min=1"`
	Limit int `form:"limit,default=50" binding:"omitempty,min=1,max=100"`
}

// Offset calculates the offset for database queries
func (p *PaginationRequest) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// ListMessagesQuery represents message listing query parameters
type ListMessagesQuery struct {
	Limit  int   `form:"limit,default=50" binding:"omitempty,min=1,max=200"`
	Before int64 `form:"before" binding:"omitempty,min=1"`
}
