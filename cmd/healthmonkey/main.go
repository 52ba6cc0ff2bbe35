package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/EricMurray-e-m-dev/HealthMonkey/internal/config"
	"github.com/EricMurray-e-m-dev/HealthMonkey/internal/orchestrator"
)

func main() {
	log.Printf("HealthMonkey starting...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Configuration loaded")
	log.Printf("  Control Port: %s", cfg.ControlPort)
	log.Printf("  Check Interval: %s", cfg.CheckInterval)
	log.Printf("  Cache TTL: %s", cfg.CacheTTL)

	orch := orchestrator.NewOrchestrator(cfg)

	if err := orch.Start(); err != nil {
		log.Fatalf("Failed to start orchestrator: %v", err)
	}

	// Listen for shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// Serve the control surface in the background
	go func() {
		if err := orch.Run(); err != nil {
			log.Fatalf("Control surface failed: %v", err)
		}
	}()

	// Block until shutdown signal
	<-sigChan
	log.Printf("Shutdown signal received...")

	if err := orch.Stop(); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Printf("HealthMonkey stopped successfully")
}
