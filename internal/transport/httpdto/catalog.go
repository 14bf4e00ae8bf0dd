package httpdto

// CreateProductRequest is used for POST /products
type CreateProductRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	Active      bool    `json:"active"`
	BrandID     *string `json:"brand_id"`
	CategoryID  *string `json:"category_id"`
}

// UpdateProductRequest is used for PUT /products/:id
type UpdateProductRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Active      *bool   `json:"active"`
}

// ListProductsRequest holds query parameters for listing products
type ListProductsRequest struct {
	Page  int    `form:"page"`
	Limit int    `form:"limit"`
	Name  string `form:"name"`
}

// CreateBrandRequest is used for POST /brands
type CreateBrandRequest struct {
	Name   string `json:"name" binding:"required"`
	Active *bool  `json:"active"`
}

// CreateCategoryRequest is used for POST /categories
type CreateCategoryRequest struct {
	Name   string `json:"name" binding:"required"`
	Active *bool  `json:"active"`
}
