package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata" // timetables are local to the circuit, not the host

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/smarttransit/circuit-trip-planner/internal/config"
	"github.com/smarttransit/circuit-trip-planner/internal/handlers"
	"github.com/smarttransit/circuit-trip-planner/internal/metrics"
	"github.com/smarttransit/circuit-trip-planner/internal/middleware"
	"github.com/smarttransit/circuit-trip-planner/internal/services"
	"github.com/smarttransit/circuit-trip-planner/pkg/otp"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting circuit trip planner")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Load the network and build the offline planner
	tripPlanner, err := services.BuildPlanner(cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to build planner: %v", err)
	}
	n := tripPlanner.Network()

	recorder := metrics.NewRecorder()
	recorder.SetNetworkStations(n.Len())

	// Initialize services
	tripService := services.NewTripPlannerService(tripPlanner, n.Destination().Location, recorder, logger)
	if cfg.LivePlanner.Enabled() {
		loc, err := cfg.Location()
		if err != nil {
			logger.Fatalf("Failed to resolve timezone: %v", err)
		}
		client := otp.NewClient(cfg.LivePlanner.URL, cfg.LivePlanner.Timeout).WithLocation(loc)
		tripService.WithLivePlanner(client, cfg.LivePlanner.Timeout)
		logger.WithField("url", cfg.LivePlanner.URL).Info("Live planner enabled")
	}
	stationService := services.NewStationService(tripPlanner, logger)

	// Initialize handlers
	tripHandler := handlers.NewTripPlanHandler(tripService, logger)
	stationHandler := handlers.NewStationHandler(stationService, logger)
	healthHandler := handlers.NewHealthHandler(version, cfg.Network.Source, n.Len(), cfg.LivePlanner.Enabled())

	// Setup router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	if cfg.Server.EnableRequestLog {
		router.Use(middleware.RequestLogger(logger))
	}
	router.Use(recorder.Middleware())

	router.Use(cors.New(cors.Config{
		AllowOrigins:  cfg.CORS.AllowedOrigins,
		AllowMethods:  cfg.CORS.AllowedMethods,
		AllowHeaders:  cfg.CORS.AllowedHeaders,
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}))

	router.GET("/health", healthHandler.Health)
	router.GET("/metrics", gin.WrapH(recorder.Handler()))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		trips := v1.Group("/trips")
		{
			trips.POST("/plan", tripHandler.PlanTrip)
			trips.POST("/plan/geojson", tripHandler.PlanTripGeoJSON)
		}

		stations := v1.Group("/stations")
		{
			stations.GET("", stationHandler.ListStations)
			stations.GET("/:id/departures", stationHandler.GetDepartures)
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}
