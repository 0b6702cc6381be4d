package domain

import "time"

type Department struct {
	ID        string    `json:"id"`
	Name      string    `json:"name" validate:"required,min=2,max=120"`
	Head      string    `json:"head" validate:"required,max=120"`
	Doctors   int       `json:"doctors" validate:"gte=0"`
	Patients  int       `json:"patients" validate:"gte=0"`
	Staff     int       `json:"staff" validate:"gte=0"`
	CreatedAt time.Time `json:"created_at"`
}
