package services

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"clinic_back_end_go/auth"
	"clinic_back_end_go/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

// defaultAvatarURL is applied at registration, matching the stock
// profile picture the web client expects.
const defaultAvatarURL = "https://res.cloudinary.com/duzolgclw/image/upload/v1727961073/upload_area_ep8jrb.png"

type registerRequest struct {
	UserName string `json:"userName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ageFromDOB derives the age in whole years, nil when the date of birth
// is absent or malformed.
func ageFromDOB(dob string, now time.Time) *int {
	if dob == "" {
		return nil
	}
	birth, err := time.Parse(models.DateFormat, dob)
	if err != nil {
		return nil
	}
	years := now.Year() - birth.Year()
	if now.YearDay() < birth.YearDay() {
		years--
	}
	if years < 0 {
		return nil
	}
	return &years
}

// patientEmailFree reports ErrAlreadyExists when the email is taken.
func patientEmailFree(ctx context.Context, q querier, email string) error {
	var existingEmail string
	err := q.QueryRow(ctx, "SELECT email FROM patients WHERE email = $1", email).Scan(&existingEmail)
	if err == pgx.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}
	return ErrAlreadyExists
}

// RegisterPatient handles POST /api/user/register.
func RegisterPatient(c *gin.Context, pool *pgxpool.Pool) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if req.UserName == "" || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userName, email and password are required"})
		return
	}

	if err := patientEmailFree(c.Request.Context(), pool, req.Email); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user with " + req.Email + " already exists"})
			return
		}
		log.Printf("Error checking email: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	patientID := uuid.NewString()
	_, err = pool.Exec(c.Request.Context(), `
		INSERT INTO patients (id, name, email, password_hash, image_url)
		VALUES ($1, $2, $3, $4, $5)`,
		patientID, req.UserName, req.Email, string(hashedPassword), defaultAvatarURL)
	if err != nil {
		log.Println("Insert Error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	token, err := auth.GenerateToken(auth.User{ID: patientID, Email: req.Email}, "patient")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"id":    patientID,
			"name":  req.UserName,
			"email": req.Email,
			"token": token,
		},
		"message": "Welcome " + req.UserName,
	})
}

// LoginPatient handles POST /api/user/login.
func LoginPatient(c *gin.Context, pool *pgxpool.Pool) {
	var loginReq models.LoginRequest
	if err := c.ShouldBindJSON(&loginReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	var patient models.Patient
	var passwordHash string
	err := pool.QueryRow(c.Request.Context(),
		"SELECT id, name, email, password_hash FROM patients WHERE email = $1", loginReq.Email).Scan(
		&patient.ID, &patient.Name, &patient.Email, &passwordHash)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User not found"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(loginReq.Password)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid password"})
		return
	}

	token, err := auth.GenerateToken(auth.User{ID: patient.ID, Email: patient.Email}, "patient")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"id":    patient.ID,
			"name":  patient.Name,
			"email": patient.Email,
			"token": token,
		},
		"message": "Login successful",
	})
}

// GetPatientInfo handles GET /api/user/user-info for the patient
// identified by the token.
func GetPatientInfo(c *gin.Context, pool *pgxpool.Pool) {
	patientID := c.GetString("userId")

	var patient models.Patient
	var dob *time.Time
	err := pool.QueryRow(c.Request.Context(), `
		SELECT id, name, email, date_of_birth, age,
		       COALESCE(phone_num, ''), COALESCE(address, ''), COALESCE(gender, ''), image_url
		FROM patients WHERE id = $1`, patientID).Scan(
		&patient.ID, &patient.Name, &patient.Email, &dob, &patient.Age,
		&patient.PhoneNumber, &patient.Address, &patient.Gender, &patient.ImageURL)
	if err != nil {
		if err == pgx.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		log.Println("Database error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	if dob != nil {
		patient.DateOfBirth = dob.Format(models.DateFormat)
	}

	c.JSON(http.StatusOK, gin.H{"data": patient})
}

// UpdatePatientProfile handles PUT /api/user/update-profile/. Multipart
// form; the age column is re-derived from the submitted date of birth.
// Snapshots on already-booked appointments keep their original values.
func UpdatePatientProfile(c *gin.Context, pool *pgxpool.Pool) {
	patientID := c.GetString("userId")

	name := c.PostForm("name")
	email := c.PostForm("email")
	if name == "" || email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name and email are required fields."})
		return
	}
	phone := c.PostForm("phone")
	address := c.PostForm("address")
	gender := c.PostForm("gender")
	dob := c.PostForm("birthday")
	age := ageFromDOB(dob, time.Now())

	imageURL, err := SaveProfileImage(c, "profileImage")
	if err != nil {
		log.Println("Upload Error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload profile image."})
		return
	}
	if imageURL == "" {
		imageURL = c.PostForm("prevImageUrl")
	}

	var dobValue interface{}
	if age != nil {
		dobValue = dob
	}

	tag, err := pool.Exec(c.Request.Context(), `
		UPDATE patients SET name = $1, email = $2, address = $3, age = $4, image_url = $5, date_of_birth = $6, phone_num = $7, gender = $8
		WHERE id = $9`,
		name, email, address, age, imageURL, dobValue, phone, gender, patientID)
	if err != nil {
		log.Println("Update Error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	if tag.RowsAffected() == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Profile updated successfully"})
}
