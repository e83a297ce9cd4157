package routes

import (
	"clinic_back_end_go/auth"
	"clinic_back_end_go/services"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v4/pgxpool"
)

func SetupAdminRoutes(r *gin.Engine, pool *pgxpool.Pool) {
	admin := r.Group("/api/admin")

	admin.POST("/registerAdmin", func(c *gin.Context) {
		services.RegisterAdmin(c, pool)
	})

	admin.POST("/admin/login", func(c *gin.Context) {
		services.LoginAdmin(c, pool)
	})

	admin.GET("/admin/", func(c *gin.Context) {
		services.GetAllDoctors(c, pool)
	})

	admin.GET("/admin-details", auth.RequireRole("admin"), func(c *gin.Context) {
		services.GetAdminDetails(c, pool)
	})

	admin.GET("/admin/appointmentList", auth.RequireRole("admin"), func(c *gin.Context) {
		services.GetAdminAppointmentList(c, pool)
	})

	admin.POST("/add-doctor/", func(c *gin.Context) {
		services.RegisterDoctor(c, pool)
	})

	admin.PUT("/doctors/:id/availability", func(c *gin.Context) {
		services.UpdateDoctorAvailability(c, pool)
	})

	admin.PUT("/admin/update-profile/:id", auth.RequireRole("admin"), func(c *gin.Context) {
		services.UpdateDoctorProfileByID(c, pool)
	})

	admin.PUT("/patient/:id/status", func(c *gin.Context) {
		services.UpdateAppointmentStatus(c, pool)
	})

	admin.PUT("/patient/:id/completedStatus", func(c *gin.Context) {
		services.CompleteAppointment(c, pool)
	})

	admin.DELETE("/delete-appointment/:id", func(c *gin.Context) {
		services.DeleteAppointment(c, pool)
	})
}
