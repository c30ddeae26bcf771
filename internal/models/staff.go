package models

import "github.com/google/uuid"

// Team is one of the fixed pipeline teams.
type Team struct {
	BaseModel
	Code string `gorm:"uniqueIndex" json:"code"`
	Name string `json:"name"`
}

// AdminUser is a staff member acting inside the pipeline.
type AdminUser struct {
	BaseModel
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	Email        string     `gorm:"uniqueIndex" json:"email"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	TeamID       *uuid.UUID `gorm:"type:uuid;index" json:"team_id"`
	Team         *Team      `json:"team,omitempty"`
}

// Customer owns orders and a wallet balance.
type Customer struct {
	BaseModel
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `gorm:"uniqueIndex" json:"phone"`
}
