package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"driveeasy-rental-backend/internal/bootstrap"
	"driveeasy-rental-backend/internal/config"
	"driveeasy-rental-backend/internal/jobs"
	"driveeasy-rental-backend/internal/logger"
	"driveeasy-rental-backend/internal/scheduler"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config/config.dev.yaml", "Path to configuration file")
	runOnce := flag.String("run-once", "", "Run a specific job once and exit (e.g., 'expired-rentals-report', 'fleet-summary', 'all')")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Initialize(cfg.Log.Level, cfg.Log.Format)
	logger.Info("Starting DriveEasy Cronjob Runner...", "log_level", cfg.Log.Level)

	deps, err := bootstrap.New(context.Background(), cfg)
	if err != nil {
		logger.Error("Failed to initialize dependencies", "error", err)
		log.Fatalf("Failed to initialize dependencies: %v", err)
	}
	defer deps.Close()

	emailSvc, err := deps.EmailService()
	if err != nil {
		log.Fatalf("Failed to initialize email: %v", err)
	}

	// Initialize Job Runner
	jobRunner := jobs.NewJobRunner(deps.Store, emailSvc, cfg)

	// Check if running a single job
	if *runOnce != "" {
		logger.Info("Running job once", "job", *runOnce)
		if err := runJobOnce(jobRunner, *runOnce); err != nil {
			deps.Close()
			os.Exit(1)
		}
		logger.Info("Job execution completed", "job", *runOnce)
		return
	}

	// Initialize Scheduler
	cronScheduler := scheduler.NewScheduler(jobRunner)

	// Start scheduler
	cronScheduler.Start()
	logger.Info("Cronjob scheduler is running. Press Ctrl+C to stop.")

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down cronjob scheduler...")
	cronScheduler.Stop()
	logger.Info("Cronjob scheduler stopped. Goodbye!")
}

// runJobOnce runs a specific job once
func runJobOnce(jobRunner *jobs.JobRunner, jobName string) error {
	switch jobName {
	case "expired-rentals-report":
		return jobRunner.ReportExpiredRentals()
	case "fleet-summary":
		return jobRunner.SendFleetSummary()
	case "all":
		return jobRunner.RunAll()
	default:
		logger.Error("Unknown job name", "job", jobName)
		fmt.Printf("Available jobs:\n")
		fmt.Printf("  - expired-rentals-report\n")
		fmt.Printf("  - fleet-summary\n")
		fmt.Printf("  - all\n")
		return fmt.Errorf("unknown job %q", jobName)
	}
}
