package notify

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"

	"github.com/xela07ax/hospital-console/internal/domain"
)

//go:embed templates/*.html templates/*.txt
var templateFS embed.FS

var (
	htmlTemplates = htmltemplate.Must(htmltemplate.ParseFS(templateFS, "templates/*.html"))
	textTemplates = texttemplate.Must(texttemplate.ParseFS(templateFS, "templates/*.txt"))
)

// AppointmentEmailData — данные для писем о записи на прием.
type AppointmentEmailData struct {
	domain.BookingConfirmation
	Clinic       string
	PatientEmail string
	PatientPhone string
}

// BuildBookingEmails собирает письмо пациенту и уведомление администратору.
func BuildBookingEmails(data AppointmentEmailData, adminAddr string) ([]*Email, error) {
	patient, err := render("appointment_confirmation", data)
	if err != nil {
		return nil, err
	}
	patient.To = []string{data.PatientEmail}
	patient.Subject = fmt.Sprintf("Your Appointment Confirmation - %s", data.Clinic)

	emails := []*Email{patient}
	if adminAddr != "" {
		admin, err := render("appointment_admin", data)
		if err != nil {
			return nil, err
		}
		admin.To = []string{adminAddr}
		admin.Subject = "New Appointment Booking"
		emails = append(emails, admin)
	}
	return emails, nil
}

func render(name string, data any) (*Email, error) {
	var html, text bytes.Buffer
	if err := htmlTemplates.ExecuteTemplate(&html, name+".html", data); err != nil {
		return nil, fmt.Errorf("render %s.html: %w", name, err)
	}
	if err := textTemplates.ExecuteTemplate(&text, name+".txt", data); err != nil {
		return nil, fmt.Errorf("render %s.txt: %w", name, err)
	}
	return &Email{HTML: html.String(), Text: text.String()}, nil
}
