package product

import (
	"github.com/pankajredekar/shopadmin/internal/validate"
)

// ImageUpload is an uploaded image file held in memory
type ImageUpload struct {
	Filename string
	Size     int64
	Data     []byte
}

// Requests

type CreateProductRequest struct {
	Name         string        `form:"name" validate:"required,max=255"`
	Price        *float64      `form:"price" validate:"required,min=0"`
	Stock        *int          `form:"stock" validate:"required,min=0"`
	Status       string        `form:"status" validate:"required,oneof=available unavailable"`
	CategoryID   *uint         `form:"category_id" validate:"required"`
	Images       []ImageUpload `form:"images"`
	PrimaryImage *int          `form:"primary_image" validate:"required,min=0"`

	// BindErrors holds fields that could not be parsed from the form
	BindErrors validate.FieldErrors `json:"-" form:"-"`
}

// UpdateProductRequest applies only the fields that are present. With new
// Images, PrimaryImage indexes them; alone it names an existing image id.
type UpdateProductRequest struct {
	Name         *string       `json:"name" form:"name" validate:"omitnil,filled,max=255"`
	Price        *float64      `json:"price" form:"price" validate:"omitnil,min=0"`
	Stock        *int          `json:"stock" form:"stock" validate:"omitnil,min=0"`
	Status       *string       `json:"status" form:"status" validate:"omitnil,oneof=available unavailable"`
	CategoryID   *uint         `json:"category_id" form:"category_id"`
	Images       []ImageUpload `json:"-" form:"images"`
	PrimaryImage *int          `json:"primary_image" form:"primary_image" validate:"omitnil,min=0"`
	DeleteImages []uint        `json:"delete_images" form:"delete_images"`

	BindErrors validate.FieldErrors `json:"-" form:"-"`
}
