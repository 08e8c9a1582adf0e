package model

import "time"

// Company represents a tenant. Every user belongs to exactly one company,
// created together with its founding admin at signup.
type Company struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"size:255;not null"`
	Country   string    `json:"country" gorm:"size:100;not null"`
	Currency  string    `json:"currency" gorm:"size:10;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Users []User `json:"users,omitempty" gorm:"foreignKey:CompanyID"`
}

// DefaultCurrency is assigned to every company at creation.
const DefaultCurrency = "INR"
