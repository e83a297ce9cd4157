package services

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"clinic_back_end_go/db"
	"clinic_back_end_go/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The engine tests need a real Postgres: the double-booking and
// earnings guarantees live in transactions and the partial unique
// index. Set TEST_DATABASE_URL to run them.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	pool, err := pgxpool.Connect(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, db.CreateSchema(context.Background(), pool))
	_, err = pool.Exec(context.Background(), `TRUNCATE appointments, patients, doctors, admins CASCADE`)
	require.NoError(t, err)
	return pool
}

func seedDoctor(t *testing.T, pool *pgxpool.Pool, name string, fees float64) string {
	t.Helper()
	id := uuid.NewString()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO doctors (id, name, email, password_hash, speciality, degree, experience, fees)
		VALUES ($1, $2, $3, 'x', 'General physician', 'MBBS', '4 Years', $4)`,
		id, name, id+"@clinic.test", fees)
	require.NoError(t, err)
	return id
}

func seedPatient(t *testing.T, pool *pgxpool.Pool, name string) string {
	t.Helper()
	id := uuid.NewString()
	_, err := pool.Exec(context.Background(), `
		INSERT INTO patients (id, name, email, password_hash)
		VALUES ($1, $2, $3, 'x')`,
		id, name, id+"@patient.test")
	require.NoError(t, err)
	return id
}

func doctorEarnings(t *testing.T, pool *pgxpool.Pool, doctorID string) float64 {
	t.Helper()
	var earnings float64
	err := pool.QueryRow(context.Background(),
		`SELECT earnings FROM doctors WHERE id = $1`, doctorID).Scan(&earnings)
	require.NoError(t, err)
	return earnings
}

func bookingFor(doctorID string) BookingRequest {
	return BookingRequest{
		DoctorID:        doctorID,
		DoctorName:      "Dr. A",
		Department:      "General physician",
		Fees:            500,
		AppointmentDate: "2025-03-01",
		AppointmentHour: 10,
		PatientName:     "Jane Roe",
	}
}

// The end-to-end booking lifecycle: book, conflicting rebook, cancel,
// rebook, complete, repeat complete.
func TestBookingLifecycle(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	doctorID := seedDoctor(t, pool, "Dr. A", 500)
	patientID := seedPatient(t, pool, "Jane Roe")

	firstID, err := bookAppointment(ctx, pool, bookingFor(doctorID), patientID)
	require.NoError(t, err)

	// Same slot again fails while the first booking is active.
	_, err = bookAppointment(ctx, pool, bookingFor(doctorID), patientID)
	assert.ErrorIs(t, err, ErrSlotTaken)

	// Cancelling releases the slot.
	require.NoError(t, cancelAppointment(ctx, pool, firstID))

	secondID, err := bookAppointment(ctx, pool, bookingFor(doctorID), patientID)
	require.NoError(t, err)
	assert.NotEqual(t, firstID, secondID)

	// Completion credits the fee snapshot exactly once.
	credited, err := completeAppointment(ctx, pool, secondID)
	require.NoError(t, err)
	assert.True(t, credited)
	assert.Equal(t, 500.0, doctorEarnings(t, pool, doctorID))

	credited, err = completeAppointment(ctx, pool, secondID)
	require.NoError(t, err)
	assert.False(t, credited)
	assert.Equal(t, 500.0, doctorEarnings(t, pool, doctorID))
}

func TestConcurrentBookingSameSlot(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	doctorID := seedDoctor(t, pool, "Dr. A", 500)
	patientID := seedPatient(t, pool, "Jane Roe")

	const attempts = 8
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = bookAppointment(ctx, pool, bookingFor(doctorID), patientID)
		}(i)
	}
	wg.Wait()

	successes := 0
	for _, err := range errs {
		if err == nil {
			successes++
		} else {
			assert.ErrorIs(t, err, ErrSlotTaken)
		}
	}
	assert.Equal(t, 1, successes)

	var active int
	err := pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM appointments
		WHERE doctor_id = $1 AND appointment_date = $2 AND appointment_hour = $3
		AND status <> 'cancelled'`,
		doctorID, "2025-03-01", 10).Scan(&active)
	require.NoError(t, err)
	assert.Equal(t, 1, active)
}

func TestConcurrentCompletionsSameDoctor(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	doctorID := seedDoctor(t, pool, "Dr. A", 500)
	patientID := seedPatient(t, pool, "Jane Roe")

	// Two appointments in different slots for the same doctor.
	ids := make([]string, 2)
	for i := range ids {
		req := bookingFor(doctorID)
		req.AppointmentHour = 10 + i
		id, err := bookAppointment(ctx, pool, req, patientID)
		require.NoError(t, err)
		ids[i] = id
	}

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := completeAppointment(ctx, pool, id)
			assert.NoError(t, err)
		}(id)
	}
	wg.Wait()

	// Both credits land; neither is lost to a concurrent read-modify-write.
	assert.Equal(t, 1000.0, doctorEarnings(t, pool, doctorID))
}

func TestSnapshotImmutability(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	doctorID := seedDoctor(t, pool, "Dr. A", 500)
	patientID := seedPatient(t, pool, "Jane Roe")

	id, err := bookAppointment(ctx, pool, bookingFor(doctorID), patientID)
	require.NoError(t, err)

	// Later profile edits must not rewrite the booked snapshot.
	_, err = pool.Exec(ctx, `UPDATE doctors SET name = 'Dr. B', fees = 900 WHERE id = $1`, doctorID)
	require.NoError(t, err)

	var snapName string
	var snapFees float64
	err = pool.QueryRow(ctx,
		`SELECT doctor_name, fees FROM appointments WHERE id = $1`, id).Scan(&snapName, &snapFees)
	require.NoError(t, err)
	assert.Equal(t, "Dr. A", snapName)
	assert.Equal(t, 500.0, snapFees)

	// Completion credits the snapshot fee, not the edited one.
	_, err = completeAppointment(ctx, pool, id)
	require.NoError(t, err)
	assert.Equal(t, 500.0, doctorEarnings(t, pool, doctorID))
}

func TestCancelCompletedRefused(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	doctorID := seedDoctor(t, pool, "Dr. A", 500)
	patientID := seedPatient(t, pool, "Jane Roe")

	id, err := bookAppointment(ctx, pool, bookingFor(doctorID), patientID)
	require.NoError(t, err)
	_, err = completeAppointment(ctx, pool, id)
	require.NoError(t, err)

	assert.ErrorIs(t, cancelAppointment(ctx, pool, id), ErrCompleted)
	assert.ErrorIs(t, updateAppointmentStatus(ctx, pool, id, models.StatusWaiting), ErrCompleted)
}

func TestStatusChangeUnknownAppointment(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	missing := uuid.NewString()

	assert.ErrorIs(t, cancelAppointment(ctx, pool, missing), ErrNotFound)
	assert.ErrorIs(t, updateAppointmentStatus(ctx, pool, missing, models.StatusConfirmed), ErrNotFound)
	_, err := completeAppointment(ctx, pool, missing)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, deleteAppointment(ctx, pool, missing), ErrNotFound)
}

func TestEmptyListsAreNotErrors(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	doctorID := seedDoctor(t, pool, "Dr. A", 500)
	patientID := seedPatient(t, pool, "Jane Roe")

	appointments, err := appointmentsByDoctor(ctx, pool, doctorID, false)
	require.NoError(t, err)
	assert.Empty(t, appointments)

	appointments, err = appointmentsByPatient(ctx, pool, patientID)
	require.NoError(t, err)
	assert.Empty(t, appointments)

	// Singular lookups are the only NotFound case.
	_, err = doctorByID(ctx, pool, uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

// A cancelled appointment cannot be moved back to an active status once
// another booking holds its slot.
func TestReinstateIntoTakenSlot(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	doctorID := seedDoctor(t, pool, "Dr. A", 500)
	patientID := seedPatient(t, pool, "Jane Roe")

	firstID, err := bookAppointment(ctx, pool, bookingFor(doctorID), patientID)
	require.NoError(t, err)
	require.NoError(t, cancelAppointment(ctx, pool, firstID))

	_, err = bookAppointment(ctx, pool, bookingFor(doctorID), patientID)
	require.NoError(t, err)

	err = updateAppointmentStatus(ctx, pool, firstID, models.StatusWaiting)
	assert.ErrorIs(t, err, ErrSlotTaken)
}

func TestDuplicateEmailRefused(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	doctorID := seedDoctor(t, pool, "Dr. A", 500)
	patientID := seedPatient(t, pool, "Jane Roe")

	assert.ErrorIs(t, doctorEmailFree(ctx, pool, doctorID+"@clinic.test"), ErrAlreadyExists)
	assert.NoError(t, doctorEmailFree(ctx, pool, "fresh@clinic.test"))

	assert.ErrorIs(t, patientEmailFree(ctx, pool, patientID+"@patient.test"), ErrAlreadyExists)
	assert.NoError(t, patientEmailFree(ctx, pool, "fresh@patient.test"))

	adminID := uuid.NewString()
	_, err := pool.Exec(ctx, `
		INSERT INTO admins (id, name, email, password_hash, role)
		VALUES ($1, 'Ada', $2, 'x', 'editor')`, adminID, adminID+"@admin.test")
	require.NoError(t, err)
	assert.ErrorIs(t, adminEmailFree(ctx, pool, adminID+"@admin.test"), ErrAlreadyExists)
	assert.NoError(t, adminEmailFree(ctx, pool, "fresh@admin.test"))
}

// An admin edits a doctor's profile by id; without a new image the
// previous reference is kept.
func TestAdminEditsDoctorProfile(t *testing.T) {
	pool := setupTestDB(t)
	doctorID := seedDoctor(t, pool, "Dr. A", 500)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.PUT("/admin/update-profile/:id", func(c *gin.Context) {
		UpdateDoctorProfileByID(c, pool)
	})

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	require.NoError(t, form.WriteField("about", "20 years in general practice."))
	require.NoError(t, form.WriteField("adrLine1", "12 High Street"))
	require.NoError(t, form.WriteField("adrLine2", "London"))
	require.NoError(t, form.WriteField("fees", "650"))
	require.NoError(t, form.WriteField("available", "false"))
	require.NoError(t, form.WriteField("prevImageUrl", "/uploads/keep.png"))
	require.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPut, "/admin/update-profile/"+doctorID, &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	doctor, err := doctorByID(context.Background(), pool, doctorID)
	require.NoError(t, err)
	assert.Equal(t, "20 years in general practice.", doctor.About)
	assert.Equal(t, "12 High Street", doctor.AdrLine1)
	assert.Equal(t, 650.0, doctor.Fees)
	assert.False(t, doctor.Availability)
	assert.Equal(t, "/uploads/keep.png", doctor.ImageURL)
}

func TestWaitingQueueFilter(t *testing.T) {
	pool := setupTestDB(t)
	ctx := context.Background()
	doctorID := seedDoctor(t, pool, "Dr. A", 500)
	patientID := seedPatient(t, pool, "Jane Roe")

	req := bookingFor(doctorID)
	waitingID, err := bookAppointment(ctx, pool, req, patientID)
	require.NoError(t, err)

	req2 := bookingFor(doctorID)
	req2.AppointmentHour = 11
	confirmedID, err := bookAppointment(ctx, pool, req2, patientID)
	require.NoError(t, err)
	require.NoError(t, updateAppointmentStatus(ctx, pool, confirmedID, models.StatusConfirmed))

	queue, err := appointmentsByDoctor(ctx, pool, doctorID, true)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, waitingID, queue[0].ID)

	all, err := appointmentsByDoctor(ctx, pool, doctorID, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	list, doctorsCount, err := allAppointmentsWithDoctorCount(ctx, pool)
	require.NoError(t, err)
	assert.Equal(t, 1, doctorsCount)
	assert.Len(t, list, 2)
}
