package domain

import "time"

type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "Scheduled"
	AppointmentCompleted AppointmentStatus = "Completed"
	AppointmentCancelled AppointmentStatus = "Cancelled"
)

type Appointment struct {
	ID           string            `json:"id"`
	RefNumber    string            `json:"ref_number"`
	PatientID    string            `json:"patient_id" validate:"required,uuid"`
	DoctorID     string            `json:"doctor_id" validate:"required,uuid"`
	DepartmentID string            `json:"department_id" validate:"required,uuid"`
	Date         string            `json:"date" validate:"required,datetime=2006-01-02"`
	Time         string            `json:"time" validate:"required"`
	Status       AppointmentStatus `json:"status" validate:"omitempty,oneof=Scheduled Completed Cancelled"`
	Notes        *string           `json:"notes,omitempty" validate:"omitempty,max=2000"`
	CreatedAt    time.Time         `json:"created_at"`
}

// AppointmentFilter — фильтр для списка записей в админке
type AppointmentFilter struct {
	Date   string
	Status AppointmentStatus
}

// BookingRequest — публичная форма записи на прием.
type BookingRequest struct {
	FullName     string `json:"full_name" validate:"required,min=3,max=120"`
	Email        string `json:"email" validate:"required,email"`
	Phone        string `json:"phone" validate:"required,phone"`
	Date         string `json:"date" validate:"required,datetime=2006-01-02"`
	Time         string `json:"time" validate:"required,slot"`
	DepartmentID string `json:"department_id" validate:"required,uuid"`
	DoctorID     string `json:"doctor_id" validate:"required,uuid"`
	Message      string `json:"message" validate:"max=2000"`
}

// BookingConfirmation возвращается клиенту после записи
type BookingConfirmation struct {
	AppointmentID  string `json:"appointment_id"`
	RefNumber      string `json:"ref_number"`
	PatientName    string `json:"patient_name"`
	Date           string `json:"date"`
	Time           string `json:"time"`
	DoctorName     string `json:"doctor_name"`
	DepartmentName string `json:"department_name"`
}

// AvailableTimes — слоты, доступные для онлайн-записи.
var AvailableTimes = []string{
	"09:00 AM", "09:30 AM", "10:00 AM", "10:30 AM", "11:00 AM", "11:30 AM",
	"12:00 PM", "02:30 PM", "03:00 PM", "03:30 PM", "04:00 PM", "04:30 PM", "05:00 PM",
}

func IsAvailableTime(t string) bool {
	for _, slot := range AvailableTimes {
		if slot == t {
			return true
		}
	}
	return false
}
