package domain

import "time"

type DoctorStatus string

const (
	DoctorActive   DoctorStatus = "Active"
	DoctorOnLeave  DoctorStatus = "On Leave"
	DoctorInactive DoctorStatus = "Inactive"
)

type Doctor struct {
	ID             string       `json:"id"`
	Name           string       `json:"name" validate:"required,min=3,max=120"`
	Email          string       `json:"email" validate:"required,email"`
	Phone          *string      `json:"phone,omitempty" validate:"omitempty,phone"`
	Specialization string       `json:"specialization" validate:"required,max=120"`
	Experience     *string      `json:"experience,omitempty" validate:"omitempty,max=60"`
	DepartmentID   *string      `json:"department_id,omitempty" validate:"omitempty,uuid"`
	Status         DoctorStatus `json:"status" validate:"omitempty,oneof='Active' 'On Leave' 'Inactive'"`
	CreatedAt      time.Time    `json:"created_at"`
}
