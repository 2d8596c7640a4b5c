package files

import (
	"time"

	"gorm.io/gorm"
)

// StoredFile: загруженный файл резюме, лежит прямо в Postgres
type StoredFile struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	UserID      uint   `gorm:"index;not null" json:"user_id"`
	Name        string `gorm:"not null" json:"name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	Data        []byte `gorm:"type:bytea" json:"-"`
	CreatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}
