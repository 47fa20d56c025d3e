package models

import "time"

// Client is a customer the freelancer bills.
type Client struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Company   *string   `json:"company,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Address   *string   `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewClient holds the fields accepted when creating a client.
type NewClient struct {
	Name    string  `json:"name" validate:"required,max=200"`
	Email   string  `json:"email" validate:"required,email"`
	Company *string `json:"company,omitempty" validate:"omitempty,max=200"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=500"`
}

// ClientPatch lists the client fields to change. Nil fields are left untouched.
type ClientPatch struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Email   *string `json:"email,omitempty" validate:"omitempty,email"`
	Company *string `json:"company,omitempty" validate:"omitempty,max=200"`
	Phone   *string `json:"phone,omitempty" validate:"omitempty,max=50"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=500"`
}

func (p ClientPatch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.Company == nil && p.Phone == nil && p.Address == nil
}

// ClientDetail is a client together with its projects and invoices.
type ClientDetail struct {
	Client
	Projects []Project `json:"projects"`
	Invoices []Invoice `json:"invoices"`
}
