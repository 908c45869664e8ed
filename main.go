package main

import (
	"fmt"
	"log"
	"os"

	"studiopro-backend/config"
	"studiopro-backend/models"
	"studiopro-backend/routes"
	"studiopro-backend/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func init() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}
	config.ConnectDB()
	config.ConnectRedis()

	config.DB.AutoMigrate(
		&models.Studio{},
		&models.User{},
		&models.Customer{},
		&models.Package{},
		&models.PackageAddon{},
		&models.Addon{},
		&models.Facility{},
		&models.Discount{},
		&models.Reservation{},
		&models.ReservationAddon{},
		&models.Payment{},
		&models.ReservationEvent{},
		&models.NotificationTemplate{},
		&models.NotificationLog{},
	)
}

func main() {

	scheduler := services.NewReminderScheduler(config.DB, services.NewNotificationService(config.DB))
	scheduler.Start()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	r := routes.SetupRouter()
	printRoutes(r)
	r.Run(":" + port)
}

func printRoutes(r *gin.Engine) {
	routes := r.Routes()
	for _, route := range routes {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
