package main

import (
	"os"

	"DentaDesk/CronJobs"
	"DentaDesk/FirebaseMessaging"
	"DentaDesk/Models"
	"DentaDesk/Routes"
	"DentaDesk/Whatsapp"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	Models.ConnectDataBase()
	FirebaseMessaging.Setup()
	router := gin.Default()
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"https://dentadesk.ddns.net", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	},
	))
	Routes.ConfigRoutes(router)
	reminderService := CronJobs.NewReminderService(Models.DB)
	scheduler := reminderService.StartReminderCron()
	_ = scheduler
	go Whatsapp.Listen()

	port := os.Getenv("PORT")
	if port == "" {
		port = "3005"
	}
	router.Run(":" + port)
}
