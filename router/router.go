package router

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"

	"attendance-core/config"
	"attendance-core/config/middleware"
	_ "attendance-core/docs"
	"attendance-core/handlers"
	"attendance-core/pkg/trustedtime"
	"attendance-core/pkg/workcalendar"
	"attendance-core/repository"
	"attendance-core/service"
	syncpkg "attendance-core/sync"
)

// SetupRoutes wires the repositories and handlers onto the app. The shared
// long-lived components (clock, resolver, coordinator, hub) come from main.
func SetupRoutes(
	app *fiber.App,
	cfg *config.AppConfig,
	authority *trustedtime.Authority,
	resolver service.IdentityResolver,
	coordinator *syncpkg.Coordinator,
	hub *syncpkg.Hub,
) {
	employeeRepo := repository.NewEmployeeRepository()
	centerRepo := repository.NewCenterRepository()
	attendanceRepo := repository.NewAttendanceRepository()
	holidayRepo := repository.NewHolidayRepository()
	templateRepo := repository.NewTemplateRepository()
	adminRepo := repository.NewAdminRepository()

	binding := service.NewBindingRegistry(employeeRepo, coordinator)
	calendar := workcalendar.New(holidayRepo)
	attendanceService := service.NewAttendanceService(centerRepo, attendanceRepo, binding, authority, resolver, calendar, coordinator)

	authHandler := handlers.NewAuthHandler(adminRepo)
	portalHandler := handlers.NewPortalHandler(attendanceService, centerRepo, employeeRepo, templateRepo, authority, resolver)
	adminHandler := handlers.NewAdminHandler(binding, attendanceRepo, holidayRepo, templateRepo, authority, coordinator, cfg.PublicPortalURL)

	// Health check & docs
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Attendance Core API",
			"status":  "running",
			"docs":    "/docs/index.html",
		})
	})
	app.Get("/docs/*", swagger.HandlerDefault)

	api := app.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Post("/login", authHandler.Login)

	// Public kiosk surface; security runs per action, not per session.
	portalGroup := api.Group("/portal")
	portalGroup.Get("/state", portalHandler.State)
	portalGroup.Get("/device-identity", portalHandler.DeviceIdentity)
	portalGroup.Get("/employees", portalHandler.EmployeesByCenter)
	portalGroup.Post("/check-in", portalHandler.CheckIn)
	portalGroup.Post("/check-out", portalHandler.CheckOut)

	adminGroup := api.Group("/admin", middleware.AuthMiddleware())
	adminGroup.Post("/employees/:id/reset-device", adminHandler.ResetDevice)
	adminGroup.Get("/attendance", adminHandler.ListAttendance)
	adminGroup.Get("/attendance/today", adminHandler.TodayAttendance)
	adminGroup.Get("/centers/:id/kiosk-qr", adminHandler.KioskQR)
	adminGroup.Get("/holidays", adminHandler.ListHolidays)
	adminGroup.Post("/holidays", adminHandler.CreateHoliday)
	adminGroup.Delete("/holidays/:id", adminHandler.DeleteHoliday)
	adminGroup.Get("/templates", adminHandler.ListTemplates)
	adminGroup.Put("/templates/:type", adminHandler.UpdateTemplate)
	adminGroup.Get("/time-status", adminHandler.TimeStatus)
	adminGroup.Get("/sync-status", adminHandler.SyncStatus)

	// Operations that change server state require super_admin.
	superGroup := adminGroup.Group("/", middleware.SuperAdminMiddleware())
	superGroup.Post("/time-sync", adminHandler.TimeSync)
	superGroup.Post("/refresh", adminHandler.Refresh)

	app.Use("/ws", handlers.WSUpgrade)
	app.Get("/ws/events", handlers.WSEvents(hub))

	log.Println("Routes registered:")
	log.Println("- POST /api/v1/auth/login")
	log.Println("- GET  /api/v1/portal/state")
	log.Println("- GET  /api/v1/portal/device-identity")
	log.Println("- GET  /api/v1/portal/employees?center_id=")
	log.Println("- POST /api/v1/portal/check-in")
	log.Println("- POST /api/v1/portal/check-out")
	log.Println("- POST /api/v1/admin/employees/:id/reset-device (admin)")
	log.Println("- GET  /api/v1/admin/attendance (admin)")
	log.Println("- GET  /api/v1/admin/attendance/today (admin)")
	log.Println("- GET  /api/v1/admin/centers/:id/kiosk-qr (admin)")
	log.Println("- GET/POST/DELETE /api/v1/admin/holidays (admin)")
	log.Println("- GET/PUT /api/v1/admin/templates (admin)")
	log.Println("- GET  /api/v1/admin/time-status (admin)")
	log.Println("- POST /api/v1/admin/time-sync (super admin)")
	log.Println("- GET  /api/v1/admin/sync-status (admin)")
	log.Println("- POST /api/v1/admin/refresh (super admin)")
	log.Println("- GET  /ws/events")
	log.Println("Swagger documentation at /docs/index.html")
}
