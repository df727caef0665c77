package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/robfig/cron/v3"

	"attendance-core/config"
	_ "attendance-core/docs"
	"attendance-core/pkg/netlocation"
	"attendance-core/pkg/paseto"
	"attendance-core/pkg/trustedtime"
	"attendance-core/pkg/workcalendar"
	"attendance-core/repository"
	"attendance-core/router"
	"attendance-core/seeder"
	"attendance-core/service"
	syncpkg "attendance-core/sync"

	_ "time/tzdata"
)

// @title Attendance Core API
// @version 1.0
// @description Attendance integrity core: trusted time, network-location validation, exclusive device binding and the check-in/check-out state machine
//
// @contact.name API Support
//
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
//
// @host localhost:3000
// @BasePath /api/v1
// @schemes http https
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and a PASETO token.
//
// @tag.name Auth
// @tag.description Admin authentication
//
// @tag.name Portal
// @tag.description Public kiosk endpoints
//
// @tag.name Admin
// @tag.description Admin only endpoints
func main() {
	cfg := config.LoadConfig()

	config.MongoConnect()
	config.InitIndexes()
	defer config.DisconnectDB()

	if err := paseto.Init(cfg.PasetoSecret); err != nil {
		log.Fatalf("Failed to initialize token signing: %v", err)
	}

	if os.Getenv("SEED_DATA") == "true" {
		seeder.SeedAdmins(repository.NewAdminRepository())
		seeder.SeedCenters(repository.NewCenterRepository(), repository.NewEmployeeRepository())
		seeder.SeedTemplates(repository.NewTemplateRepository())
	}

	// Trusted time: ranked NTP sources with an HTTP time API as last resort.
	var providers []trustedtime.Provider
	for _, host := range cfg.TimeSources {
		providers = append(providers, trustedtime.NewNTPProvider(host, 4*time.Second))
	}
	providers = append(providers, trustedtime.NewHTTPProvider(cfg.TimeAPIURL, 4*time.Second))
	authority := trustedtime.NewAuthority(providers...)

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	if err := authority.Synchronize(startupCtx); err != nil {
		log.Printf("Warning: initial time sync failed, running on the local clock: %v", err)
	}
	cancelStartup()

	resolver := netlocation.NewResolver(cfg.IPResolverURL)

	employeeRepo := repository.NewEmployeeRepository()
	centerRepo := repository.NewCenterRepository()
	attendanceRepo := repository.NewAttendanceRepository()
	holidayRepo := repository.NewHolidayRepository()

	// Sync plumbing: cache + bus + change-stream feed + websocket hub.
	cache := syncpkg.NewCache()
	bus := syncpkg.NewBus()
	coordinator := syncpkg.NewCoordinator(cache, bus, employeeRepo, centerRepo, attendanceRepo)
	watcher := syncpkg.NewWatcher(bus, cache)
	coordinator.SetFeed(watcher)

	runCtx, cancelRun := context.WithCancel(context.Background())
	defer cancelRun()
	go watcher.Run(runCtx)

	refreshCtx, cancelRefresh := context.WithTimeout(context.Background(), 30*time.Second)
	if err := coordinator.Refresh(refreshCtx); err != nil {
		log.Printf("Warning: initial cache refresh failed: %v", err)
	}
	cancelRefresh()

	hub := syncpkg.NewHub()
	go hub.Run(bus)

	// Background jobs: periodic time re-sync and the absence sweep.
	calendar := workcalendar.New(holidayRepo)
	sweeper := service.NewAbsenceSweeper(employeeRepo, centerRepo, attendanceRepo, authority, calendar, coordinator)

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.TimeSyncSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := authority.Synchronize(ctx); err != nil {
			log.Printf("Time sync failed: %v", err)
		}
	}); err != nil {
		log.Fatalf("Invalid TIME_SYNC_CRON spec %q: %v", cfg.TimeSyncSpec, err)
	}
	if _, err := scheduler.AddFunc(cfg.AbsenceSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		marked, err := sweeper.Run(ctx)
		if err != nil {
			log.Printf("Absence sweep failed: %v", err)
			return
		}
		if marked > 0 {
			log.Printf("Absence sweep marked %d employees absent", marked)
		}
	}); err != nil {
		log.Fatalf("Invalid ABSENCE_SWEEP_CRON spec %q: %v", cfg.AbsenceSpec, err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	app := fiber.New()

	config.SetupCORS(app)
	app.Use(logger.New())

	router.SetupRoutes(app, cfg, authority, resolver, coordinator, hub)

	log.Printf("Server running on port %s", cfg.Port)
	log.Printf("API documentation: http://localhost:%s/docs/index.html", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}
