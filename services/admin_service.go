package services

import (
	"context"
	"errors"
	"log"
	"net/http"

	"clinic_back_end_go/auth"
	"clinic_back_end_go/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"golang.org/x/crypto/bcrypt"
)

// Admin accounts carry a single role tag in current scope.
const adminRole = "editor"

// adminEmailFree reports ErrAlreadyExists when the email is taken.
func adminEmailFree(ctx context.Context, q querier, email string) error {
	var existingEmail string
	err := q.QueryRow(ctx, "SELECT email FROM admins WHERE email = $1", email).Scan(&existingEmail)
	if err == pgx.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}
	return ErrAlreadyExists
}

// RegisterAdmin handles POST /api/admin/registerAdmin.
func RegisterAdmin(c *gin.Context, pool *pgxpool.Pool) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return
	}
	if req.UserName == "" || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userName, email and password are required"})
		return
	}

	if err := adminEmailFree(c.Request.Context(), pool, req.Email); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "admin already exists"})
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

	adminID := uuid.NewString()
	_, err = pool.Exec(c.Request.Context(), `
		INSERT INTO admins (id, name, email, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)`,
		adminID, req.UserName, req.Email, string(hashedPassword), adminRole)
	if err != nil {
		log.Println("Insert Error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	token, err := auth.GenerateToken(auth.User{ID: adminID, Email: req.Email}, "admin")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"id":    adminID,
			"name":  req.UserName,
			"email": req.Email,
			"token": token,
		},
		"message": "Welcome " + req.UserName,
	})
}

// LoginAdmin handles POST /api/admin/admin/login.
func LoginAdmin(c *gin.Context, pool *pgxpool.Pool) {
	var loginReq models.LoginRequest
	if err := c.ShouldBindJSON(&loginReq); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	var admin models.Admin
	var passwordHash string
	err := pool.QueryRow(c.Request.Context(),
		"SELECT id, name, email, password_hash FROM admins WHERE email = $1", loginReq.Email).Scan(
		&admin.ID, &admin.Name, &admin.Email, &passwordHash)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Admin with email " + loginReq.Email + " does not exist"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(loginReq.Password)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid password"})
		return
	}

	token, err := auth.GenerateToken(auth.User{ID: admin.ID, Email: admin.Email}, "admin")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"id":    admin.ID,
			"name":  admin.Name,
			"email": admin.Email,
			"token": token,
		},
		"message": "Login successful",
	})
}

// GetAdminDetails handles GET /api/admin/admin-details for the admin
// identified by the token.
func GetAdminDetails(c *gin.Context, pool *pgxpool.Pool) {
	adminID := c.GetString("userId")

	var admin models.Admin
	err := pool.QueryRow(c.Request.Context(),
		"SELECT id, name, email, role FROM admins WHERE id = $1", adminID).Scan(
		&admin.ID, &admin.Name, &admin.Email, &admin.Role)
	if err != nil {
		if err == pgx.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "Admin not found"})
			return
		}
		log.Println("Database error:", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": admin})
}
