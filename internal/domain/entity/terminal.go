package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PosTerminal is an API client: a point-of-sale terminal (or integration)
// that authenticates with its code and secret to obtain a JWT.
type PosTerminal struct {
	ID           uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Code         string         `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Name         string         `gorm:"size:255" json:"name"`
	SecretHash   string         `gorm:"size:255;not null" json:"-"`
	BranchNo     string         `gorm:"size:10" json:"branch_no"`
	DistrictCode string         `gorm:"size:10" json:"district_code"`
	Active       bool           `gorm:"default:true" json:"active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new terminal
func (t *PosTerminal) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the PosTerminal model
func (PosTerminal) TableName() string {
	return "pos_terminals"
}
