package image

import (
	"time"

	"github.com/google/uuid"
)

// Image represents product_images. Soft deletion is an explicit state
// transition: DeletedAt is set by the service layer, never by an ORM hook,
// so that blob relocation and the row update stay in a known order.
type Image struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"product_id"`
	Name          *string    `gorm:"size:255" json:"name"`
	Description   *string    `gorm:"size:1024" json:"description"`
	ImagePath     string     `gorm:"not null" json:"image_path"`
	ThumbnailPath string     `gorm:"not null" json:"thumbnail_path"`
	Active        bool       `gorm:"not null;default:false" json:"active"`
	Main          bool       `gorm:"not null;default:false" json:"main"`
	CreatedAt     time.Time  `gorm:"default:now()" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"default:now()" json:"updated_at"`
	DeletedAt     *time.Time `gorm:"index" json:"deleted_at,omitempty"`
}

func (Image) TableName() string {
	return "product_images"
}

func (i Image) IsDeleted() bool {
	return i.DeletedAt != nil
}
