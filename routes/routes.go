package routes

import (
	"os"
	"strings"

	"studiopro-backend/config"
	"studiopro-backend/controllers"
	"studiopro-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	r := gin.Default()

	allowed := []string{"http://localhost:3000"}
	if env := os.Getenv("CORS_ORIGINS"); env != "" {
		allowed = strings.Split(env, ",")
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowed,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(config.PerformanceLogger())

	auth := r.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)

		auth.Use(utils.AuthMiddleware())
		auth.GET("/me", controllers.Me)
	}

	// Payment gateway callback; authenticated by the gateway
	// integration, not by a staff session.
	r.POST("/webhooks/payment", controllers.PaymentWebhook)

	api := r.Group("/api")
	api.Use(utils.AuthMiddleware())
	{
		// Booking routes
		bookings := api.Group("/bookings")
		{
			bookings.POST("", controllers.CreateBooking)
			bookings.GET("", controllers.GetBookings)
			bookings.GET("/:id", controllers.GetBooking)
			bookings.GET("/:id/cancellation", controllers.GetCancellationPreview)
			bookings.PUT("/:id/addons", controllers.UpdateBookingAddons)
			bookings.POST("/:id/reschedule", controllers.RescheduleBooking)
			bookings.POST("/:id/cancel", controllers.CancelBooking)
			bookings.POST("/:id/confirm", controllers.ConfirmBooking)
			bookings.POST("/:id/start", controllers.StartBooking)
			bookings.POST("/:id/complete", controllers.CompleteBooking)
			bookings.POST("/:id/no-show", controllers.NoShowBooking)
			bookings.POST("/:id/payments", controllers.RecordBookingPayment)
			bookings.DELETE("/:id", utils.RequireAdmin(), controllers.DeleteBooking)
		}

		// Availability routes
		availability := api.Group("/availability")
		{
			availability.GET("", controllers.GetAvailability)
			availability.GET("/facility", controllers.CheckFacilityAvailability)
		}

		// Discount routes (CRUD is admin only; validation is open to cs)
		discounts := api.Group("/discounts")
		{
			discounts.POST("/validate", controllers.ValidateDiscountCode)
			discounts.GET("", controllers.GetDiscounts)

			admin := discounts.Group("", utils.RequireAdmin())
			admin.POST("", controllers.CreateDiscount)
			admin.PUT("/:id", controllers.UpdateDiscount)
			admin.DELETE("/:id", controllers.DeleteDiscount)
		}

		// Catalog routes
		packages := api.Group("/packages")
		{
			packages.POST("", controllers.CreatePackage)
			packages.GET("", controllers.GetPackages)
			packages.PUT("/:id", controllers.UpdatePackage)
			packages.PUT("/:id/addons", controllers.SetPackageAddons)
		}

		addons := api.Group("/addons")
		{
			addons.POST("", controllers.CreateAddon)
			addons.GET("", controllers.GetAddons)
		}

		facilities := api.Group("/facilities")
		{
			facilities.POST("", controllers.CreateFacility)
			facilities.GET("", controllers.GetFacilities)
		}

		// Customer routes
		customers := api.Group("/customers")
		{
			customers.POST("", controllers.CreateCustomer)
			customers.GET("", controllers.GetCustomers)
			customers.GET("/:id", controllers.GetCustomer)
			customers.PUT("/:id", controllers.UpdateCustomer)
			customers.DELETE("/:id", controllers.DeleteCustomer)
		}

		// Dashboard routes
		api.GET("/dashboard", controllers.GetDashboardOverview)
	}

	return r
}
