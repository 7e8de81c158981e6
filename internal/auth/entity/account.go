package entity

import "time"

// Account is a registered phone number with a password.
type Account struct {
	ID           int64
	PhoneKey     string
	DisplayName  string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type NewAccount struct {
	ID           int64
	PhoneKey     string
	DisplayName  string
	PasswordHash string
	CreatedAt    time.Time
}
