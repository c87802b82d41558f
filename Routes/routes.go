package Routes

import (
	"DentaDesk/Controllers"
	"DentaDesk/Middleware"
	"DentaDesk/SSE"
	"DentaDesk/Whatsapp"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
)

func ConfigRoutes(router *gin.Engine) {
	// Gzip Compression
	router.Use(gzip.Gzip(gzip.BestSpeed))

	// Public routes
	public := router.Group("/api")
	{
		public.POST("/login", Controllers.Login)
		public.POST("/register", Controllers.Register)
		public.GET("/GetAvailableSlots", Controllers.GetAvailableSlots)
		public.POST("/BookAppointment", Controllers.BookPublicAppointment)
		public.POST("/GetPatientIdByPhone", Controllers.GetPatientIdByPhone)
		public.POST("/FetchAppointmentsByPatientID", Controllers.FetchAppointmentsByPatientID)
	}

	// Authorized routes
	authorized := router.Group("/api/protected")
	authorized.Use(Middleware.JwtAuthMiddleware())
	{

		// User-related routes
		authorized.GET("/user", Controllers.CurrentUser)
		authorized.POST("/SaveFcmToken", Controllers.SaveFcmToken)

		// Appointment-related routes
		authorized.POST("/CreateAppointment", Controllers.CreateAppointment)
		authorized.POST("/RescheduleAppointment", Controllers.RescheduleAppointment)
		authorized.POST("/TransitionAppointment", Controllers.TransitionAppointment)
		authorized.GET("/FetchAppointments", Controllers.FetchAppointments)
		authorized.GET("/DailyAgenda", Controllers.DailyAgenda)
		authorized.GET("/WeeklyAgenda", Controllers.WeeklyAgenda)
		authorized.GET("/MonthlyAgenda", Controllers.MonthlyAgenda)
		authorized.GET("/UpcomingAppointments", Controllers.UpcomingAppointments)

		// Installment-related routes
		authorized.POST("/CreateInstallmentPlan", Controllers.CreateInstallmentPlan)
		authorized.GET("/FetchInstallmentPlans", Controllers.FetchInstallmentPlans)
		authorized.GET("/FetchInstallmentPlan", Controllers.FetchInstallmentPlan)
		authorized.POST("/MarkPaymentPaid", Controllers.MarkPaymentPaid)
		authorized.POST("/CancelInstallmentPlan", Controllers.CancelInstallmentPlan)
		authorized.POST("/MarkPlanDelinquent", Controllers.MarkPlanDelinquent)
		authorized.GET("/FetchDelinquentPlans", Controllers.FetchDelinquentPlans)
		authorized.GET("/FetchOverduePayments", Controllers.FetchOverduePayments)
		authorized.GET("/FetchUpcomingPayments", Controllers.FetchUpcomingPayments)

		// Treatment-related routes
		authorized.POST("/CreateTreatment", Controllers.CreateTreatment)
		authorized.GET("/FetchTreatments", Controllers.FetchTreatments)
		authorized.GET("/FetchTreatmentBalance", Controllers.FetchTreatmentBalance)
		authorized.POST("/CompleteTreatmentSession", Controllers.CompleteTreatmentSession)
		authorized.POST("/RegisterTreatmentPayment", Controllers.RegisterTreatmentPayment)
		authorized.POST("/UpdateTreatment", Controllers.UpdateTreatment)

		// Budget-related routes
		authorized.POST("/CreateBudget", Controllers.CreateBudget)
		authorized.GET("/FetchBudgets", Controllers.FetchBudgets)
		authorized.POST("/UpdateBudgetStatus", Controllers.UpdateBudgetStatus)
		authorized.POST("/ConvertBudgetToTreatment", Controllers.ConvertBudgetToTreatment)

		// Patient-related routes
		authorized.GET("/FetchPatients", Controllers.FetchPatients)
		authorized.POST("/CreatePatient", Controllers.CreatePatient)
		authorized.POST("/UpdatePatient", Controllers.UpdatePatient)
		authorized.POST("/DeletePatient", Controllers.DeletePatient)

		// WhatsApp-related routes
		authorized.GET("/CheckWhatsAppLogin", Whatsapp.CheckLogin)
		authorized.GET("/GetWhatsAppQRCode", Whatsapp.GetQRCode)

		// SSE (Server-Sent Events) route
		authorized.GET("/RequestSSE", SSE.RequestSSE)

		// Export-related routes
		authorized.POST("/ExportInstallmentLedger", Controllers.ExportInstallmentLedger)
		authorized.GET("/ExportTreatmentBalances", Controllers.ExportTreatmentBalances)
	}
}
