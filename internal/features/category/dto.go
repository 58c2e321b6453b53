package category

// Requests

type CategoryRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}
