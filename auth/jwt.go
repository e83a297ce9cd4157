package auth

import (
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
)

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
)

func secretKey() []byte {
	if s := os.Getenv("JWT_SECRET"); s != "" {
		return []byte(s)
	}
	return []byte("your-secret")
}

// GenerateToken issues a 24h HS256 token carrying the subject identity
// and its role ("patient", "doctor" or "admin").
func GenerateToken(user User, userType string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId":   user.ID,
		"email":    user.Email,
		"userType": userType,
		"exp":      time.Now().Add(24 * time.Hour).Unix(),
	})

	tokenString, err := token.SignedString(secretKey())
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken verifies a bearer token and returns the embedded identity
// and role.
func ParseToken(tokenString string) (User, string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return secretKey(), nil
	})
	if err != nil {
		var ve *jwt.ValidationError
		if errors.As(err, &ve) && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return User{}, "", ErrTokenExpired
		}
		return User{}, "", ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return User{}, "", ErrTokenInvalid
	}
	userId, _ := claims["userId"].(string)
	email, _ := claims["email"].(string)
	userType, _ := claims["userType"].(string)
	if userId == "" {
		return User{}, "", ErrTokenInvalid
	}
	return User{ID: userId, Email: email}, userType, nil
}

// RequireRole rejects requests that do not carry a valid token for the
// given role, and stores the acting subject id under "userId".
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenString := strings.TrimPrefix(header, "Bearer ")
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing token"})
			return
		}

		user, userType, err := ParseToken(tokenString)
		if err != nil {
			if errors.Is(err, ErrTokenExpired) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token expired"})
				return
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}
		if userType != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}

		c.Set("userId", user.ID)
		c.Set("email", user.Email)
		c.Next()
	}
}
