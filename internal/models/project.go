package models

import "time"

type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectCompleted ProjectStatus = "completed"
	ProjectOnHold    ProjectStatus = "on-hold"
)

// ProjectStatuses lists the statuses in display order.
var ProjectStatuses = []ProjectStatus{ProjectActive, ProjectCompleted, ProjectOnHold}

// Project is a unit of work for a client, optionally billed at an hourly rate.
type Project struct {
	ID          int64         `json:"id"`
	UserID      int64         `json:"user_id"`
	ClientID    int64         `json:"client_id"`
	Name        string        `json:"name"`
	Description *string       `json:"description,omitempty"`
	Status      ProjectStatus `json:"status"`
	Rate        *float64      `json:"rate,omitempty"`
	ClientName  string        `json:"client_name,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// NewProject holds the fields accepted when creating a project.
type NewProject struct {
	ClientID    int64         `json:"client_id" validate:"required,gt=0"`
	Name        string        `json:"name" validate:"required,max=200"`
	Description *string       `json:"description,omitempty" validate:"omitempty,max=2000"`
	Status      ProjectStatus `json:"status,omitempty" validate:"omitempty,oneof=active completed on-hold"`
	Rate        *float64      `json:"rate,omitempty" validate:"omitempty,finite,gte=0"`
}

// ProjectPatch lists the project fields to change. Nil fields are left untouched.
type ProjectPatch struct {
	ClientID    *int64         `json:"client_id,omitempty" validate:"omitempty,gt=0"`
	Name        *string        `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string        `json:"description,omitempty" validate:"omitempty,max=2000"`
	Status      *ProjectStatus `json:"status,omitempty" validate:"omitempty,oneof=active completed on-hold"`
	Rate        *float64       `json:"rate,omitempty" validate:"omitempty,finite,gte=0"`
}

func (p ProjectPatch) Empty() bool {
	return p.ClientID == nil && p.Name == nil && p.Description == nil && p.Status == nil && p.Rate == nil
}

// ProjectFilter narrows a project listing.
type ProjectFilter struct {
	ClientID *int64
	Status   *ProjectStatus
}
