package dto

// DiscussionCreateRequest carries the fields for creating a discussion.
// Zero values for points and min words fall back to the defaults.
type DiscussionCreateRequest struct {
	Title    string `json:"title" validate:"required,min=1"`
	Question string `json:"question" validate:"required,min=1"`
	Points   int    `json:"points" validate:"gte=0"`
	MinWords int    `json:"min_words" validate:"gte=0"`
}

// DiscussionUpdateRequest is a partial update; nil fields are left unchanged.
type DiscussionUpdateRequest struct {
	Title    *string `json:"title" validate:"omitempty,min=1"`
	Question *string `json:"question" validate:"omitempty,min=1"`
	Points   *int    `json:"points" validate:"omitempty,gte=0"`
	MinWords *int    `json:"min_words" validate:"omitempty,gte=0"`
}
