package main

import (
	"log"
	"os"
	"time"

	"clinic_back_end_go/db"
	"clinic_back_end_go/routes"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	r := gin.Default()

	config := cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	r.Use(cors.New(config))

	conn, err := db.InitDatabase()
	if err != nil {
		log.Fatalf("Failed to connect to the database: %v", err)
	}
	defer conn.Close()

	r.Static("/uploads", "./uploads")

	routes.SetupPatientRoutes(r, conn)
	routes.SetupDoctorRoutes(r, conn)
	routes.SetupAdminRoutes(r, conn)

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}
	r.Run(":" + port)
}
