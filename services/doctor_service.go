package services

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"clinic_back_end_go/auth"
	"clinic_back_end_go/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

// doctorEmailFree reports ErrAlreadyExists when the email is taken.
func doctorEmailFree(ctx context.Context, q querier, email string) error {
	var existingEmail string
	err := q.QueryRow(ctx, "SELECT email FROM doctors WHERE email = $1", email).Scan(&existingEmail)
	if err == pgx.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}
	return ErrAlreadyExists
}

const doctorColumns = `id, name, email, speciality, degree, experience, about, fees,
	adr_line1, adr_line2, image_url, availability, earnings`

func scanDoctor(row pgx.Row) (models.Doctor, error) {
	var d models.Doctor
	err := row.Scan(&d.ID, &d.Name, &d.Email, &d.Speciality, &d.Degree, &d.Experience,
		&d.About, &d.Fees, &d.AdrLine1, &d.AdrLine2, &d.ImageURL, &d.Availability, &d.Earnings)
	return d, err
}

func doctorByID(ctx context.Context, q querier, id string) (models.Doctor, error) {
	d, err := scanDoctor(q.QueryRow(ctx, `SELECT `+doctorColumns+` FROM doctors WHERE id = $1`, id))
	if err == pgx.ErrNoRows {
		return models.Doctor{}, ErrNotFound
	}
	return d, err
}

// RegisterDoctor handles POST /api/admin/add-doctor/. Multipart form:
// profile fields plus an optional image file.
func RegisterDoctor(c *gin.Context, pool *pgxpool.Pool) {
	var doctor models.Doctor
	doctor.Name = c.PostForm("name")
	doctor.Email = c.PostForm("email")
	doctor.Password = c.PostForm("password")
	doctor.Speciality = c.PostForm("speciality")
	doctor.Degree = c.PostForm("degree")
	doctor.Experience = c.PostForm("experience")
	doctor.About = c.PostForm("about")
	doctor.AdrLine1 = c.PostForm("address1")
	doctor.AdrLine2 = c.PostForm("address2")

	if doctor.Name == "" || doctor.Email == "" || doctor.Password == "" || doctor.Speciality == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, email, password and speciality are required"})
		return
	}
	fees, err := strconv.ParseFloat(c.PostForm("fees"), 64)
	if err != nil || fees < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "fees must be a non-negative number"})
		return
	}
	doctor.Fees = fees

	imageURL, err := SaveProfileImage(c, "file")
	if err != nil {
		log.Println("Upload Error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store profile image"})
		return
	}
	doctor.ImageURL = imageURL

	if err := doctorEmailFree(c.Request.Context(), pool, doctor.Email); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Doctor already exists"})
			return
		}
		log.Printf("Error checking email: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(doctor.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	doctor.ID = uuid.NewString()
	_, err = pool.Exec(c.Request.Context(), `
		INSERT INTO doctors (id, name, email, password_hash, speciality, degree, experience, about, fees, adr_line1, adr_line2, image_url)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		doctor.ID, doctor.Name, doctor.Email, string(hashedPassword), doctor.Speciality,
		doctor.Degree, doctor.Experience, doctor.About, doctor.Fees,
		doctor.AdrLine1, doctor.AdrLine2, doctor.ImageURL)
	if err != nil {
		log.Println("Insert Error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Doctor created successfully"})
}

// LoginDoctor handles POST /api/admin/doctor/login.
func LoginDoctor(c *gin.Context, pool *pgxpool.Pool) {
	var loginReq models.LoginRequest
	if err := c.ShouldBindJSON(&loginReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	var doctor models.Doctor
	var passwordHash string
	err := pool.QueryRow(c.Request.Context(),
		"SELECT id, name, email, password_hash FROM doctors WHERE email = $1", loginReq.Email).Scan(
		&doctor.ID, &doctor.Name, &doctor.Email, &passwordHash)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Doctor not found"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(loginReq.Password)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid password"})
		return
	}

	token, err := auth.GenerateToken(auth.User{ID: doctor.ID, Email: doctor.Email}, "doctor")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"id":    doctor.ID,
			"name":  doctor.Name,
			"email": doctor.Email,
			"token": token,
		},
		"message": "Login successful",
	})
}

// GetDoctorProfile handles GET /api/admin/doctor-profile for the doctor
// identified by the token.
func GetDoctorProfile(c *gin.Context, pool *pgxpool.Pool) {
	doctorID := c.GetString("userId")

	doctor, err := doctorByID(c.Request.Context(), pool, doctorID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Doctor not found"})
			return
		}
		log.Println("Database error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": doctor})
}

// GetDoctorByID handles GET /api/admin/doctor/doctorp/:id and
// GET /api/user/appointment/:id/ (the booking page detail view).
func GetDoctorByID(c *gin.Context, pool *pgxpool.Pool) {
	doctorID := c.Param("id")

	doctor, err := doctorByID(c.Request.Context(), pool, doctorID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Doctor not found"})
			return
		}
		log.Println("Database error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": doctor})
}

func listDoctors(ctx context.Context, q querier, speciality string) ([]models.Doctor, error) {
	query := `SELECT ` + doctorColumns + ` FROM doctors`
	params := []interface{}{}
	if speciality != "" {
		query += ` WHERE speciality = $1`
		params = append(params, speciality)
	}
	rows, err := q.Query(ctx, query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	doctors := []models.Doctor{}
	for rows.Next() {
		var d models.Doctor
		err := rows.Scan(&d.ID, &d.Name, &d.Email, &d.Speciality, &d.Degree, &d.Experience,
			&d.About, &d.Fees, &d.AdrLine1, &d.AdrLine2, &d.ImageURL, &d.Availability, &d.Earnings)
		if err != nil {
			return nil, err
		}
		doctors = append(doctors, d)
	}
	return doctors, rows.Err()
}

// GetAllDoctors handles GET /api/user/doctors/ and GET /api/admin/admin/.
func GetAllDoctors(c *gin.Context, pool *pgxpool.Pool) {
	doctors, err := listDoctors(c.Request.Context(), pool, "")
	if err != nil {
		log.Println("Query Error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": doctors})
}

// GetDoctorsBySpeciality handles GET /api/user/doctors/:speciality/.
func GetDoctorsBySpeciality(c *gin.Context, pool *pgxpool.Pool) {
	speciality := c.Param("speciality")

	doctors, err := listDoctors(c.Request.Context(), pool, speciality)
	if err != nil {
		log.Println("Query Error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": doctors})
}

type availabilityRequest struct {
	Available *bool `json:"available"`
}

// UpdateDoctorAvailability handles PUT /api/admin/doctors/:id/availability.
func UpdateDoctorAvailability(c *gin.Context, pool *pgxpool.Pool) {
	doctorID := c.Param("id")

	var req availabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Available == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "available is required"})
		return
	}

	tag, err := pool.Exec(c.Request.Context(),
		"UPDATE doctors SET availability = $1 WHERE id = $2", *req.Available, doctorID)
	if err != nil {
		log.Println("Update Error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	if tag.RowsAffected() == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Doctor not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Availability updated successfully"})
}

// UpdateDoctorProfile handles PUT /api/admin/doctor/update-profile/ for
// the doctor identified by the token. Multipart form; snapshot fields on
// existing appointments are not touched.
func UpdateDoctorProfile(c *gin.Context, pool *pgxpool.Pool) {
	applyDoctorProfileUpdate(c, pool, c.GetString("userId"), "DoctorImage")
}

// UpdateDoctorProfileByID handles PUT /api/admin/admin/update-profile/:id:
// an admin editing a doctor's profile. Same form as the self-edit, but
// the target comes from the path and the image field is named Image.
func UpdateDoctorProfileByID(c *gin.Context, pool *pgxpool.Pool) {
	applyDoctorProfileUpdate(c, pool, c.Param("id"), "Image")
}

func applyDoctorProfileUpdate(c *gin.Context, pool *pgxpool.Pool, doctorID, imageField string) {
	about := c.PostForm("about")
	adrLine1 := c.PostForm("adrLine1")
	adrLine2 := c.PostForm("adrLine2")
	available := c.DefaultPostForm("available", "true") == "true"

	fees, err := strconv.ParseFloat(c.PostForm("fees"), 64)
	if err != nil || fees < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "fees must be a non-negative number"})
		return
	}

	imageURL, err := SaveProfileImage(c, imageField)
	if err != nil {
		log.Println("Upload Error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store profile image"})
		return
	}
	if imageURL == "" {
		imageURL = c.PostForm("prevImageUrl")
	}

	tag, err := pool.Exec(c.Request.Context(), `
		UPDATE doctors SET about = $1, adr_line1 = $2, adr_line2 = $3, fees = $4, image_url = $5, availability = $6
		WHERE id = $7`,
		about, adrLine1, adrLine2, fees, imageURL, available, doctorID)
	if err != nil {
		log.Println("Update Error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	if tag.RowsAffected() == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Doctor not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully"})
}

// GetDoctorDashboard handles GET /api/admin/doctor-dashboard: the
// doctor's profile (with accrued earnings) plus the full appointment
// list.
func GetDoctorDashboard(c *gin.Context, pool *pgxpool.Pool) {
	doctorID := c.GetString("userId")

	doctor, err := doctorByID(c.Request.Context(), pool, doctorID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Doctor not found"})
			return
		}
		log.Println("Database error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	appointments, err := appointmentsByDoctor(c.Request.Context(), pool, doctorID, false)
	if err != nil {
		log.Println("Query Error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"doctor":       doctor,
			"appointments": appointments,
		},
	})
}
