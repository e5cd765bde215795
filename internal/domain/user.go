package domain

import "time"

// User Model
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	FullName     string    `gorm:"size:100;not null" json:"fullname"`
	Email        string    `gorm:"size:100;uniqueIndex;not null" json:"email"` // Stored lower-cased
	Gender       string    `gorm:"size:20;not null" json:"gender"`
	MobileNumber string    `gorm:"size:15;uniqueIndex;not null" json:"mobilenumber"`
	Password     string    `gorm:"size:200;not null" json:"-"` // Bcrypt hash, never serialised
	CreatedAt    time.Time `json:"created_at"`
}

// Genders offered by the sign-up form
var Genders = []string{"Male", "Female", "Other"}
