package models

import (
	"fmt"
	"strings"
	"time"
)

// Status is the closed set of appointment lifecycle states. The store
// never holds any other value; free-text statuses are rejected at the
// boundary.
type Status string

const (
	StatusWaiting   Status = "waiting"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// ParseStatus normalizes and validates a caller-supplied status value.
// Older clients send capitalized values ("Cancelled"), so matching is
// case-insensitive.
func ParseStatus(s string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case StatusWaiting:
		return StatusWaiting, nil
	case StatusConfirmed:
		return StatusConfirmed, nil
	case StatusCompleted:
		return StatusCompleted, nil
	case StatusCancelled:
		return StatusCancelled, nil
	}
	return "", fmt.Errorf("unknown appointment status %q", s)
}

type Appointment struct {
	ID              string  `json:"id"`
	DoctorID        string  `json:"doctorId"`
	DoctorName      string  `json:"doctorName"`
	DocImageURL     string  `json:"image"`
	Department      string  `json:"department"`
	Fees            float64 `json:"fees"`
	AppointmentDate string  `json:"appointmentDate"`
	AppointmentDay  string  `json:"appointmentDay"`
	AppointmentHour int     `json:"appointmentHour"`
	AdrLine1        string  `json:"adrLine1"`
	AdrLine2        string  `json:"adrLine2"`
	PatientID       string  `json:"patientId"`
	PatientName     string  `json:"patientName"`
	PatientAge      *int    `json:"age"`
	PatientImageURL string  `json:"imageUrl"`
	Status          Status  `json:"status"`
}

const DateFormat = "2006-01-02"

// DayLabel returns the weekday label stored alongside a booking, e.g.
// "Saturday" for "2025-03-01".
func DayLabel(date string) (string, error) {
	d, err := time.Parse(DateFormat, date)
	if err != nil {
		return "", err
	}
	return d.Weekday().String(), nil
}
