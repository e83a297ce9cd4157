package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"clinic_back_end_go/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx, so the slot
// check can run standalone or inside the booking transaction.
type querier interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

type BookingRequest struct {
	DoctorID        string  `json:"doctorId"`
	DoctorName      string  `json:"doctorName"`
	Image           string  `json:"image"`
	Department      string  `json:"department"`
	Fees            float64 `json:"fees"`
	AppointmentDate string  `json:"appointmentDate"`
	AppointmentDay  string  `json:"appointmentDay"`
	AppointmentHour int     `json:"appointmentHour"`
	AdrLine1        string  `json:"adrLine1"`
	AdrLine2        string  `json:"adrLine2"`
	PatientName     string  `json:"patientName"`
	Age             *int    `json:"age"`
	ImageURL        string  `json:"imageUrl"`
	Status          string  `json:"status"`
}

func (r *BookingRequest) validate() error {
	if r.DoctorID == "" {
		return errors.New("doctorId is required")
	}
	if r.DoctorName == "" {
		return errors.New("doctorName is required")
	}
	if r.PatientName == "" {
		return errors.New("patientName is required")
	}
	if _, err := time.Parse(models.DateFormat, r.AppointmentDate); err != nil {
		return errors.New("appointmentDate must be YYYY-MM-DD")
	}
	if r.AppointmentHour < 0 || r.AppointmentHour > 23 {
		return errors.New("appointmentHour must be between 0 and 23")
	}
	if r.Fees < 0 {
		return errors.New("fees must not be negative")
	}
	return nil
}

// checkSlotFree reports whether the (doctor, date, hour) slot has no
// active appointment. Cancelled appointments never block a slot.
func checkSlotFree(ctx context.Context, q querier, doctorID, date string, hour int) error {
	var id string
	err := q.QueryRow(ctx,
		`SELECT id FROM appointments
		 WHERE doctor_id = $1 AND appointment_date = $2 AND appointment_hour = $3
		 AND status <> 'cancelled'`,
		doctorID, date, hour).Scan(&id)
	if err == pgx.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}
	return ErrSlotTaken
}

// bookAppointment re-checks the slot and inserts the snapshot row in a
// single transaction. The partial unique index on active slots closes
// the window between the check and the insert: a concurrent booking of
// the same slot surfaces as a unique violation, reported as ErrSlotTaken.
func bookAppointment(ctx context.Context, pool *pgxpool.Pool, req BookingRequest, patientID string) (string, error) {
	if err := req.validate(); err != nil {
		return "", err
	}

	status := models.StatusWaiting
	if req.Status != "" {
		parsed, err := models.ParseStatus(req.Status)
		if err != nil {
			return "", err
		}
		status = parsed
	}

	day := req.AppointmentDay
	if day == "" {
		label, err := models.DayLabel(req.AppointmentDate)
		if err != nil {
			return "", err
		}
		day = label
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return "", err
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	if err := checkSlotFree(ctx, tx, req.DoctorID, req.AppointmentDate, req.AppointmentHour); err != nil {
		return "", err
	}

	appointmentID := uuid.NewString()
	_, err = tx.Exec(ctx,
		`INSERT INTO appointments
		 (id, doctor_id, doctor_name, doc_image_url, department, fees,
		  appointment_date, appointment_day, appointment_hour,
		  adr_line1, adr_line2, patient_id, patient_name, patient_age,
		  patient_img_url, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		appointmentID, req.DoctorID, req.DoctorName, req.Image, req.Department, req.Fees,
		req.AppointmentDate, day, req.AppointmentHour,
		req.AdrLine1, req.AdrLine2, patientID, req.PatientName, req.Age,
		req.ImageURL, status)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return "", ErrSlotTaken
			case "23503":
				return "", fmt.Errorf("%w: unknown doctor or patient", ErrNotFound)
			}
		}
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return appointmentID, nil
}

// updateAppointmentStatus applies a non-completing transition. A target
// of completed is routed through completeAppointment so the earnings
// credit and the status write stay in one transaction. Completed
// appointments are terminal apart from hard deletion.
func updateAppointmentStatus(ctx context.Context, pool *pgxpool.Pool, appointmentID string, status models.Status) error {
	if status == models.StatusCompleted {
		_, err := completeAppointment(ctx, pool, appointmentID)
		return err
	}

	var id string
	err := pool.QueryRow(ctx,
		`UPDATE appointments SET status = $2
		 WHERE id = $1 AND status <> 'completed'
		 RETURNING id`,
		appointmentID, status).Scan(&id)
	if err == pgx.ErrNoRows {
		return statusOfMissingUpdate(ctx, pool, appointmentID)
	}
	// Re-activating a cancelled appointment whose slot was rebooked in
	// the meantime trips the active-slot index.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrSlotTaken
	}
	return err
}

// completeAppointment marks the appointment completed and credits the
// doctor's earnings with the fee snapshot, atomically. The conditional
// update fires at most once per appointment: a repeat call matches no
// row and credits nothing.
func completeAppointment(ctx context.Context, pool *pgxpool.Pool, appointmentID string) (bool, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return false, err
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return false, err
	}
	defer tx.Rollback(ctx)

	var doctorID string
	var fees float64
	err = tx.QueryRow(ctx,
		`UPDATE appointments SET status = 'completed'
		 WHERE id = $1 AND status <> 'completed'
		 RETURNING doctor_id, fees`,
		appointmentID).Scan(&doctorID, &fees)
	if err == pgx.ErrNoRows {
		// Either already completed (no second credit) or unknown id.
		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM appointments WHERE id = $1)`,
			appointmentID).Scan(&exists); err != nil {
			return false, err
		}
		if !exists {
			return false, ErrNotFound
		}
		return false, nil
	}
	if err != nil {
		return false, err
	}

	tag, err := tx.Exec(ctx,
		`UPDATE doctors SET earnings = earnings + $1 WHERE id = $2`,
		fees, doctorID)
	if err != nil {
		return false, err
	}
	if tag.RowsAffected() != 1 {
		return false, fmt.Errorf("earnings credit matched %d doctors for id %s", tag.RowsAffected(), doctorID)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// cancelAppointment releases the slot. Cancelling a completed
// appointment is refused: its fee has already been credited.
func cancelAppointment(ctx context.Context, pool *pgxpool.Pool, appointmentID string) error {
	var id string
	err := pool.QueryRow(ctx,
		`UPDATE appointments SET status = 'cancelled'
		 WHERE id = $1 AND status <> 'completed'
		 RETURNING id`,
		appointmentID).Scan(&id)
	if err == pgx.ErrNoRows {
		return statusOfMissingUpdate(ctx, pool, appointmentID)
	}
	return err
}

// statusOfMissingUpdate distinguishes "no such appointment" from "the
// appointment is completed" after a guarded update matched no row.
func statusOfMissingUpdate(ctx context.Context, q querier, appointmentID string) error {
	var exists bool
	if err := q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM appointments WHERE id = $1)`,
		appointmentID).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	return ErrCompleted
}

func deleteAppointment(ctx context.Context, pool *pgxpool.Pool, appointmentID string) error {
	tag, err := pool.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, appointmentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const appointmentColumns = `id, doctor_id, doctor_name, doc_image_url, department, fees,
	appointment_date, appointment_day, appointment_hour, adr_line1, adr_line2,
	patient_id, patient_name, patient_age, patient_img_url, status`

func scanAppointments(rows pgx.Rows) ([]models.Appointment, error) {
	appointments := []models.Appointment{}
	for rows.Next() {
		var a models.Appointment
		var date time.Time
		var status string
		err := rows.Scan(&a.ID, &a.DoctorID, &a.DoctorName, &a.DocImageURL, &a.Department, &a.Fees,
			&date, &a.AppointmentDay, &a.AppointmentHour, &a.AdrLine1, &a.AdrLine2,
			&a.PatientID, &a.PatientName, &a.PatientAge, &a.PatientImageURL, &status)
		if err != nil {
			return nil, err
		}
		a.AppointmentDate = date.Format(models.DateFormat)
		a.Status = models.Status(status)
		appointments = append(appointments, a)
	}
	return appointments, rows.Err()
}

func appointmentsByDoctor(ctx context.Context, q querier, doctorID string, onlyWaiting bool) ([]models.Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE doctor_id = $1`
	params := []interface{}{doctorID}
	if onlyWaiting {
		query += ` AND status = $2`
		params = append(params, models.StatusWaiting)
	}
	rows, err := q.Query(ctx, query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAppointments(rows)
}

func appointmentsByPatient(ctx context.Context, q querier, patientID string) ([]models.Appointment, error) {
	rows, err := q.Query(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE patient_id = $1`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAppointments(rows)
}

func allAppointmentsWithDoctorCount(ctx context.Context, q querier) ([]models.Appointment, int, error) {
	var doctorsCount int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM doctors`).Scan(&doctorsCount); err != nil {
		return nil, 0, err
	}
	rows, err := q.Query(ctx, `SELECT `+appointmentColumns+` FROM appointments`)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	appointments, err := scanAppointments(rows)
	if err != nil {
		return nil, 0, err
	}
	return appointments, doctorsCount, nil
}

// BookAppointment handles POST /api/user/book-appointment.
func BookAppointment(c *gin.Context, pool *pgxpool.Pool) {
	var req BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Println("Bind Error:", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if err := req.validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patientID := c.GetString("userId")
	appointmentID, err := bookAppointment(c.Request.Context(), pool, req, patientID)
	if err != nil {
		if errors.Is(err, ErrSlotTaken) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Slot is already taken."})
			return
		}
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		log.Println("Booking Error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":    gin.H{"appointmentId": appointmentID},
		"message": "Appointment booked successfully.",
	})
}

type statusUpdateRequest struct {
	Status string `json:"status"`
	// The original client also posts patientName, doctorId and fees
	// with status updates; the fee snapshot on the appointment row is
	// authoritative, so they are accepted and ignored.
	PatientName string  `json:"patientName"`
	DoctorID    string  `json:"doctorId"`
	Fees        float64 `json:"fees"`
}

// UpdateAppointmentStatus handles PUT /api/admin/patient/:id/status.
func UpdateAppointmentStatus(c *gin.Context, pool *pgxpool.Pool) {
	appointmentID := c.Param("id")

	var req statusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	status, err := models.ParseStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := updateAppointmentStatus(c.Request.Context(), pool, appointmentID, status); err != nil {
		respondStatusChangeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "status updated successfully"})
}

// CompleteAppointment handles PUT /api/admin/patient/:id/completedStatus.
func CompleteAppointment(c *gin.Context, pool *pgxpool.Pool) {
	appointmentID := c.Param("id")

	credited, err := completeAppointment(c.Request.Context(), pool, appointmentID)
	if err != nil {
		respondStatusChangeError(c, err)
		return
	}
	if !credited {
		c.JSON(http.StatusOK, gin.H{"message": "appointment already completed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "appointment completed"})
}

// CancelAppointment handles PUT /api/user/cancel-appointment/:id.
func CancelAppointment(c *gin.Context, pool *pgxpool.Pool) {
	appointmentID := c.Param("id")

	if err := cancelAppointment(c.Request.Context(), pool, appointmentID); err != nil {
		respondStatusChangeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "status updated successfully"})
}

// DeleteAppointment handles DELETE /api/admin/delete-appointment/:id.
func DeleteAppointment(c *gin.Context, pool *pgxpool.Pool) {
	appointmentID := c.Param("id")

	if err := deleteAppointment(c.Request.Context(), pool, appointmentID); err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Appointment not found"})
			return
		}
		log.Println("Delete Error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Appointment deleted successfully"})
}

func respondStatusChangeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Appointment not found"})
	case errors.Is(err, ErrCompleted):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Appointment is already completed"})
	case errors.Is(err, ErrSlotTaken):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Slot is already taken."})
	default:
		log.Println("Status Update Error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
	}
}

// GetNewDoctorAppointments handles GET /api/admin/doctor/appointments:
// the doctor's unconfirmed queue.
func GetNewDoctorAppointments(c *gin.Context, pool *pgxpool.Pool) {
	doctorID := c.GetString("userId")

	appointments, err := appointmentsByDoctor(c.Request.Context(), pool, doctorID, true)
	if err != nil {
		log.Println("Query Error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": appointments, "message": "Appointments retrieved successfully"})
}

// GetDoctorAppointments handles GET /api/admin/doctor/appointmentList.
func GetDoctorAppointments(c *gin.Context, pool *pgxpool.Pool) {
	doctorID := c.GetString("userId")

	appointments, err := appointmentsByDoctor(c.Request.Context(), pool, doctorID, false)
	if err != nil {
		log.Println("Query Error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": appointments, "message": "Appointments retrieved successfully"})
}

// GetPatientAppointments handles GET /api/user/get-appointments.
func GetPatientAppointments(c *gin.Context, pool *pgxpool.Pool) {
	patientID := c.GetString("userId")

	appointments, err := appointmentsByPatient(c.Request.Context(), pool, patientID)
	if err != nil {
		log.Println("Query Error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": appointments, "message": "Appointments retrieved successfully"})
}

// GetAdminAppointmentList handles GET /api/admin/admin/appointmentList:
// every appointment plus the doctor count for the dashboard.
func GetAdminAppointmentList(c *gin.Context, pool *pgxpool.Pool) {
	appointments, doctorsCount, err := allAppointmentsWithDoctorCount(c.Request.Context(), pool)
	if err != nil {
		log.Println("Query Error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"doctorsCount": doctorsCount,
			"appointments": appointments,
		},
		"message": "Appointments retrieved successfully",
	})
}
