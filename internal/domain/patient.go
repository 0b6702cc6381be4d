package domain

import "time"

type Patient struct {
	ID          string    `json:"id"`
	FirstName   string    `json:"first_name" validate:"required,min=2,max=100"`
	LastName    string    `json:"last_name" validate:"required,min=1,max=100"`
	Email       string    `json:"email" validate:"required,email"`
	Phone       *string   `json:"phone,omitempty" validate:"omitempty,phone"`
	Address     *string   `json:"address,omitempty" validate:"omitempty,max=500"`
	DateOfBirth *string   `json:"date_of_birth,omitempty" validate:"omitempty,datetime=2006-01-02"`
	CreatedAt   time.Time `json:"created_at"`
}

func (p *Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}
