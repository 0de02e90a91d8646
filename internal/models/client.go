package models

import "time"

// Client is an end customer, identified by country code and phone number.
type Client struct {
	ID           int       `db:"client_id" json:"client_id"`
	CountryCode  string    `db:"client_country_code" json:"client_country_code"`
	Number       string    `db:"client_number" json:"client_number"`
	PasswordHash string    `db:"client_password" json:"-"`
	ProfID       *int      `db:"prof_id" json:"prof_id,omitempty"`
	CreatedAt    time.Time `db:"client_created_at" json:"created_at"`
}
