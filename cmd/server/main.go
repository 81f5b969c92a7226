package main

import (
	"database/sql"
	"log"
	"net/http"
	"os"

	"floorcrm/internal/api"
	"floorcrm/internal/auth"
	"floorcrm/internal/repository"
	"floorcrm/internal/service"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
)

func main() {
	godotenv.Load()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL not set")
	}
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}

	scheduleRepo := repository.NewScheduleRepository(db)
	appointmentRepo := repository.NewAppointmentRepository(db)
	adminAuthRepo := repository.NewAdminAuthRepository(db)
	jobRepo := repository.NewJobRepository(db)

	availabilitySvc := service.NewAvailabilityService(scheduleRepo, appointmentRepo)
	assignmentSvc := service.NewAssignmentService(availabilitySvc, appointmentRepo)
	slotSvc := service.NewSlotService(availabilitySvc)
	notifier := service.NewNotifierService()
	bookingSvc := service.NewBookingService(assignmentSvc, slotSvc, scheduleRepo, appointmentRepo, notifier)
	repSvc := service.NewRepService(scheduleRepo, assignmentSvc)
	adminAuthSvc := service.NewAdminAuthService(adminAuthRepo)
	jobSvc := service.NewJobService(jobRepo, assignmentSvc)

	bookingHandler := api.NewBookingHandler(bookingSvc, slotSvc, availabilitySvc, assignmentSvc)
	adminHandler := api.NewAdminHandler(repSvc, bookingSvc, assignmentSvc)
	adminAuthHandler := api.NewAdminAuthHandler(adminAuthSvc)

	r := mux.NewRouter()

	// Public endpoints
	r.HandleFunc("/api/slots", bookingHandler.GetDaySlots).Methods("POST")
	r.HandleFunc("/api/appointments", bookingHandler.BookAppointment).Methods("POST")
	r.HandleFunc("/api/appointments/{id}", bookingHandler.GetAppointment).Methods("GET")
	r.HandleFunc("/api/reps/availability", bookingHandler.GetAvailableReps).Methods("POST")

	// Admin login stays outside the auth middleware
	r.HandleFunc("/admin/login", adminAuthHandler.Login).Methods("POST")

	// Admin endpoints (protected)
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(auth.AdminAuthMiddleware)
	admin.HandleFunc("/users", adminAuthHandler.CreateAdminUser).Methods("POST")
	admin.HandleFunc("/reps", adminHandler.ListReps).Methods("GET")
	admin.HandleFunc("/reps", adminHandler.CreateRep).Methods("POST")
	admin.HandleFunc("/reps/workload", adminHandler.RepWorkload).Methods("POST")
	admin.HandleFunc("/reps/{id}", adminHandler.DeactivateRep).Methods("DELETE")
	admin.HandleFunc("/reps/{id}/schedule", adminHandler.GetRepSchedule).Methods("GET")
	admin.HandleFunc("/reps/{id}/availability", adminHandler.AddWeeklyAvailability).Methods("POST")
	admin.HandleFunc("/reps/{id}/availability/{windowID}", adminHandler.DeleteWeeklyAvailability).Methods("DELETE")
	admin.HandleFunc("/reps/{id}/blocked-times", adminHandler.AddBlockedTime).Methods("POST")
	admin.HandleFunc("/reps/{id}/blocked-times/{blockID}", adminHandler.DeleteBlockedTime).Methods("DELETE")
	admin.HandleFunc("/reps/{id}/time-off", adminHandler.RequestTimeOff).Methods("POST")
	admin.HandleFunc("/reps/{id}/reassign", adminHandler.ReassignRep).Methods("POST")
	admin.HandleFunc("/time-off/{id}", adminHandler.ResolveTimeOff).Methods("PUT")
	admin.HandleFunc("/appointments", adminHandler.ListAppointments).Methods("GET")
	admin.HandleFunc("/appointments/{id}/status", adminHandler.UpdateAppointmentStatus).Methods("PUT")
	admin.HandleFunc("/appointments/{id}/reschedule", adminHandler.RescheduleAppointment).Methods("POST")
	admin.HandleFunc("/appointments/{id}/reassign", adminHandler.ReassignAppointment).Methods("POST")
	admin.HandleFunc("/appointments/{id}", adminHandler.DeleteAppointment).Methods("DELETE")

	c := cron.New()
	c.AddFunc("@hourly", func() {
		if err := jobSvc.CompletePastAppointments(); err != nil {
			log.Printf("Cron Job error: %v", err)
		}
	})
	c.AddFunc("0 6 * * *", func() {
		if err := jobSvc.ReassignTimeOffConflicts(); err != nil {
			log.Printf("Cron Job error: %v", err)
		}
	})
	c.Start()
	defer c.Stop()

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Server running on port %s", port)
	log.Fatal(http.ListenAndServe(":"+port, handlers.LoggingHandler(os.Stdout, cors(r))))
}
