package httpdto

// ImageDTO represents a product image in API responses.
type ImageDTO struct {
	ID            string  `json:"id"`
	ProductID     string  `json:"product_id"`
	Name          *string `json:"name"`
	Description   *string `json:"description"`
	ImagePath     string  `json:"image_path"`
	ThumbnailPath string  `json:"thumbnail_path"`
	Active        bool    `json:"active"`
	Main          bool    `json:"main"`
	CreatedAt     string  `json:"created_at"`
	UpdatedAt     string  `json:"updated_at"`
	DeletedAt     string  `json:"deleted_at,omitempty"`
}

// ListImagesResponse is returned when listing a product's images
type ListImagesResponse struct {
	Images []ImageDTO `json:"images"`
}
