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

// User represents a registered athlete
type User struct {
	BaseModel
	Name         string    `json:"name" gorm:"not null"`
	Email        string    `json:"email" gorm:"unique;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Avatar       string    `json:"avatar"` // Object name in the avatar store, empty = no photo
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// Exercise is an entry of the exercise catalog
type Exercise struct {
	BaseModel
	Name        string    `json:"name" gorm:"not null;uniqueIndex:idx_exercise_group_name"`
	Series      int       `json:"series" gorm:"not null"`
	Repetitions int       `json:"repetitions" gorm:"not null"`
	Group       string    `json:"group" gorm:"column:group_name;not null;index;uniqueIndex:idx_exercise_group_name"`
	Demo        string    `json:"demo"`  // File name under the demo media directory
	Thumb       string    `json:"thumb"` // File name under the thumb media directory
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// History records one completed exercise
type History struct {
	BaseModel
	UserID     string `json:"user_id" gorm:"not null;index"`
	ExerciseID string `json:"exercise_id" gorm:"not null"`

	// Relationships
	User     *User    `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Exercise Exercise `json:"exercise,omitzero" gorm:"foreignKey:ExerciseID;constraint:OnDelete:CASCADE"`
}

// TableName keeps the table name singular like the domain term
func (History) TableName() string {
	return "history"
}

// AutoMigrate runs database migrations for all models
func AutoMigrate(db *gorm.DB) error {
	// Collect all models
	models := []interface{}{
		&User{}, &Exercise{}, &History{},
	}

	return db.AutoMigrate(models...)
}

// FindByID safely finds a record by string ID
func FindByID[T any](db *gorm.DB, id string, model *T) error {
	return db.Where("id = ?", id).First(model).Error
}

// FindByIDWithPreload finds a record by ID with preloading
func FindByIDWithPreload[T any](db *gorm.DB, id string, model *T, preloads ...string) error {
	query := db
	for _, preload := range preloads {
		query = query.Preload(preload)
	}
	return query.Where("id = ?", id).First(model).Error
}
