package routes

import (
	"clinic_back_end_go/auth"
	"clinic_back_end_go/services"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v4/pgxpool"
)

func SetupDoctorRoutes(r *gin.Engine, pool *pgxpool.Pool) {
	admin := r.Group("/api/admin")

	admin.POST("/doctor/login", func(c *gin.Context) {
		services.LoginDoctor(c, pool)
	})

	admin.GET("/doctor-profile", auth.RequireRole("doctor"), func(c *gin.Context) {
		services.GetDoctorProfile(c, pool)
	})

	admin.GET("/doctor/doctorp/:id", func(c *gin.Context) {
		services.GetDoctorByID(c, pool)
	})

	admin.GET("/doctor/appointments", auth.RequireRole("doctor"), func(c *gin.Context) {
		services.GetNewDoctorAppointments(c, pool)
	})

	admin.GET("/doctor/appointmentList", auth.RequireRole("doctor"), func(c *gin.Context) {
		services.GetDoctorAppointments(c, pool)
	})

	admin.GET("/doctor-dashboard", auth.RequireRole("doctor"), func(c *gin.Context) {
		services.GetDoctorDashboard(c, pool)
	})

	admin.PUT("/doctor/update-profile/", auth.RequireRole("doctor"), func(c *gin.Context) {
		services.UpdateDoctorProfile(c, pool)
	})
}
