package models

import "time"

// Profile holds personal details shared by system users and clients.
type Profile struct {
	ID          int        `db:"prof_id" json:"prof_id"`
	FirstName   *string    `db:"prof_firstname" json:"prof_firstname"`
	MiddleName  *string    `db:"prof_middlename" json:"prof_middlename"`
	LastName    *string    `db:"prof_lastname" json:"prof_lastname"`
	Address     *string    `db:"prof_address" json:"prof_address"`
	DateOfBirth *time.Time `db:"prof_date_of_birth" json:"prof_date_of_birth"`
	CreatedAt   time.Time  `db:"prof_created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"prof_updated_at" json:"updated_at"`
}

// Image is one uploaded profile picture. Among a profile's rows at most one
// carries IsCurrent; older rows stay around as history.
type Image struct {
	ID        int       `db:"img_id" json:"img_id"`
	ProfID    int       `db:"prof_id" json:"prof_id"`
	Location  string    `db:"img_location" json:"img_location"`
	IsCurrent bool      `db:"img_is_current" json:"img_is_current"`
	CreatedAt time.Time `db:"img_created_at" json:"img_created_at"`
}
