package routes

import (
	"clinic_back_end_go/auth"
	"clinic_back_end_go/services"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v4/pgxpool"
)

func SetupPatientRoutes(r *gin.Engine, pool *pgxpool.Pool) {
	user := r.Group("/api/user")

	user.POST("/register", func(c *gin.Context) {
		services.RegisterPatient(c, pool)
	})

	user.POST("/login", func(c *gin.Context) {
		services.LoginPatient(c, pool)
	})

	user.GET("/doctors/", func(c *gin.Context) {
		services.GetAllDoctors(c, pool)
	})

	user.GET("/doctors/:speciality/", func(c *gin.Context) {
		services.GetDoctorsBySpeciality(c, pool)
	})

	user.GET("/appointment/:id/", func(c *gin.Context) {
		services.GetDoctorByID(c, pool)
	})

	user.POST("/book-appointment", auth.RequireRole("patient"), func(c *gin.Context) {
		services.BookAppointment(c, pool)
	})

	user.GET("/get-appointments", auth.RequireRole("patient"), func(c *gin.Context) {
		services.GetPatientAppointments(c, pool)
	})

	user.GET("/user-info", auth.RequireRole("patient"), func(c *gin.Context) {
		services.GetPatientInfo(c, pool)
	})

	user.PUT("/cancel-appointment/:id", func(c *gin.Context) {
		services.CancelAppointment(c, pool)
	})

	user.PUT("/update-profile/", auth.RequireRole("patient"), func(c *gin.Context) {
		services.UpdatePatientProfile(c, pool)
	})
}
