package models

import (
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// BaseModel provides common fields and auto-generated ULID for all models
type BaseModel struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(26)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// BeforeCreate generates a ULID for the ID field if it's empty
func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = ulid.Make().String()
	}
	return nil
}

// User represents a registered account
type User struct {
	BaseModel
	Email        string `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string `json:"-" gorm:"not null"`
	Name         string `json:"name" gorm:"not null"`
	Bio          string `json:"bio"`
	Location     string `json:"location"`
	AvatarURL    string `json:"avatarUrl"`
}

// Recipe represents a published recipe
type Recipe struct {
	BaseModel
	Name         string   `json:"name" gorm:"not null"`
	Description  string   `json:"description" gorm:"type:text"`
	Category     string   `json:"category" gorm:"index"`
	PrepTime     int      `json:"prepTime"`
	CookTime     int      `json:"cookTime"`
	Ingredients  []string `json:"ingredients" gorm:"serializer:json"`
	Instructions []string `json:"instructions" gorm:"serializer:json"`
	Image        string   `json:"image"`
	CreatedByID  string   `json:"createdBy" gorm:"index;not null"`
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Recipe{},
	)
}
