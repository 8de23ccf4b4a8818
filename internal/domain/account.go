package domain

import "time"

// Account is a portal sign-in record for managers and administrators.
type Account struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	Sambhag      string
	District     string
	Block        string
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity projects the account onto the session identity.
func (a Account) Identity() Identity {
	return Identity{
		Subject:  a.ID,
		Role:     a.Role,
		Name:     a.Name,
		Sambhag:  a.Sambhag,
		District: a.District,
		Block:    a.Block,
	}
}
