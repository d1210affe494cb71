package models

import "time"

// Account is a portal user stored in the accounts table.
type Account struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         Role      `db:"role" json:"role"`
	Department   *string   `db:"department" json:"department"`
	Designation  *string   `db:"designation" json:"designation"`
	IsApproved   bool      `db:"is_approved" json:"isApproved"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// Profile is the public view of an account.
type Profile struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Role        Role    `json:"role"`
	Department  *string `json:"department"`
	Designation *string `json:"designation"`
}

// Profile projects the account without credentials or flags.
func (a *Account) Profile() Profile {
	return Profile{
		ID:          a.ID,
		Name:        a.Name,
		Email:       a.Email,
		Role:        a.Role,
		Department:  a.Department,
		Designation: a.Designation,
	}
}

// DirectoryEntry is one row of the faculty directory.
type DirectoryEntry struct {
	ID         string  `db:"id" json:"id"`
	Name       string  `db:"name" json:"name"`
	Email      string  `db:"email" json:"email"`
	Department *string `db:"department" json:"department"`
	Role       Role    `db:"role" json:"role"`
}

// AccountRef is the minimal owner projection embedded in other resources.
type AccountRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}
