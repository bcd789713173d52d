package main

import (
	"fmt"

	"civicreport/config"
	"civicreport/database"
	"civicreport/filestore"
	"civicreport/handlers"
	"civicreport/storage"
	"civicreport/store"
	"civicreport/version"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log.Info("Starting the report service...")

	// Select the storage backend
	var reportStore store.ReportStore
	switch cfg.StorageBackend {
	case config.BackendFile:
		log.Infof("Using flat-file storage at %s", cfg.DataFile)
		reportStore = filestore.New(cfg.DataFile)
	default:
		db, err := database.Connect(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.Close()

		if err := database.InitSchema(db); err != nil {
			log.Fatalf("Failed to initialize database schema: %v", err)
		}
		reportStore = database.NewReportService(db)
	}

	// Initialize media storage
	media, err := storage.NewLocalStore(cfg.UploadsDir)
	if err != nil {
		log.Fatalf("Failed to initialize media storage: %v", err)
	}

	// Initialize handlers
	h := handlers.New(reportStore, media, cfg)

	// Setup router
	router := gin.Default()
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, PATCH, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET("/version", func(c *gin.Context) {
		c.JSON(200, version.Get("report-service"))
	})

	handlers.RegisterRoutes(router, h)

	// Serve uploaded media
	router.Static("/uploads", cfg.UploadsDir)

	// Start server
	log.Infof("Report service starting on port %s", cfg.Port)
	if err := router.Run(fmt.Sprintf(":%s", cfg.Port)); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
