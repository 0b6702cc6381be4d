package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xela07ax/hospital-console/internal/domain"
)

func validBooking() domain.BookingRequest {
	return domain.BookingRequest{
		FullName:     "Ravi Kumar",
		Email:        "ravi@example.org",
		Phone:        "+91 98765-43210",
		Date:         "2026-03-20",
		Time:         "10:30 AM",
		DepartmentID: "6f1c1e52-2b0e-4c55-9d43-8f2d1d1a0c11",
		DoctorID:     "1b7a3c9e-5d1f-4b39-8c1e-2a6f7e9d4b22",
	}
}

func TestBookingRequestValid(t *testing.T) {
	v := New()
	req := validBooking()
	assert.NoError(t, v.Struct(&req))
}

func TestBookingRequestFieldErrors(t *testing.T) {
	v := New()
	req := validBooking()
	req.FullName = "Ra"
	req.Email = "not-an-email"
	req.Phone = "12345"
	req.Time = "07:00 AM"
	req.DoctorID = "dr-1"

	err := v.Struct(&req)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "must be at least 3 characters", verr.Fields["full_name"])
	assert.Equal(t, "must be a valid email address", verr.Fields["email"])
	assert.Equal(t, "must contain at least 10 digits", verr.Fields["phone"])
	assert.Equal(t, "is not an available time slot", verr.Fields["time"])
	assert.Equal(t, "must be a valid id", verr.Fields["doctor_id"])
	assert.NotContains(t, verr.Fields, "date")
}

func TestContactMessageRules(t *testing.T) {
	v := New()
	msg := domain.ContactMessage{Name: "A", Email: "a@example.org", Subject: "Hi", Message: "short"}

	var verr *Error
	require.ErrorAs(t, v.Struct(&msg), &verr)
	assert.Len(t, verr.Fields, 3)
	assert.Contains(t, verr.Fields, "name")
	assert.Contains(t, verr.Fields, "subject")
	assert.Contains(t, verr.Fields, "message")
}

func TestValidPhone(t *testing.T) {
	assert.True(t, ValidPhone("9876543210"))
	assert.True(t, ValidPhone("+91 (987) 654-3210"))
	assert.False(t, ValidPhone("987654"))
	assert.False(t, ValidPhone("98765abc43210"))
	assert.False(t, ValidPhone("1234567890123456"))
}

func TestSanitize(t *testing.T) {
	v := New()
	assert.Equal(t, "Hello", v.Sanitize("  <b>Hello</b><script>alert(1)</script> "))
	assert.Equal(t, "plain text", v.Sanitize("plain text"))
}

func TestSanitizeKeepsPlainText(t *testing.T) {
	v := New()
	for _, in := range []string{
		"Priya D'Souza",
		"Billing & insurance",
		`He said "ok"`,
	} {
		assert.Equal(t, in, v.Sanitize(in))
	}
	// Второй проход ничего не меняет
	assert.Equal(t, "Tom & Jerry", v.Sanitize(v.Sanitize("<i>Tom</i> & Jerry")))
}

func TestErrorMessageIsStable(t *testing.T) {
	err := Fields("time", "is not an available time slot", "date", "must not be in the past")
	assert.Equal(t, "validation failed: date: must not be in the past; time: is not an available time slot", err.Error())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
