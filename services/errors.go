package services

import "errors"

var (
	// ErrSlotTaken means an active appointment already occupies the
	// requested (doctor, date, hour) slot.
	ErrSlotTaken = errors.New("slot is already taken")

	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")

	// ErrCompleted guards transitions out of the completed state:
	// earnings were already credited for the appointment.
	ErrCompleted = errors.New("appointment already completed")
)
