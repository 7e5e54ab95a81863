package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleUser       = "user"
	RoleInstructor = "instructor"
)

type User struct {
	ID        string    `gorm:"primaryKey;size:36" json:"_id"`
	UserName  string    `gorm:"size:255;not null;uniqueIndex" json:"userName"`
	UserEmail string    `gorm:"size:255;not null;uniqueIndex" json:"userEmail"`
	Password  string    `gorm:"not null" json:"-"`
	Role      string    `gorm:"size:20;not null;default:'user'" json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	assignID(&u.ID)
	return nil
}
