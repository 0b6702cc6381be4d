package domain

import "time"

type ContactMessage struct {
	ID        string    `json:"id"`
	Name      string    `json:"name" validate:"required,min=2,max=120"`
	Email     string    `json:"email" validate:"required,email"`
	Subject   string    `json:"subject" validate:"required,min=5,max=200"`
	Message   string    `json:"message" validate:"required,min=10,max=5000"`
	CreatedAt time.Time `json:"created_at"`
}
