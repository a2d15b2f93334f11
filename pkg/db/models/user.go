package models

// User represents a registered account. Email is stored normalized.
type User struct {
	Base
	FirstName    string `gorm:"column:first_name;type:varchar(50);not null"`
	LastName     string `gorm:"column:last_name;type:varchar(50);not null"`
	Email        string `gorm:"column:email;type:text;not null;uniqueIndex"`
	PasswordHash string `gorm:"column:password_hash;not null"`
	IsAdmin      bool   `gorm:"column:is_admin;not null;default:false"`
}
