package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"mining-pnl/internal/api"
	"mining-pnl/internal/data"
	"mining-pnl/internal/logging"

	"github.com/gin-gonic/gin"
)

func main() {
	// Get configuration from environment
	port := os.Getenv("API_PORT")
	if port == "" {
		port = "8080"
	}
	referenceDir := os.Getenv("REFERENCE_DIR")
	if referenceDir == "" {
		referenceDir = "./data"
	}
	cacheSize := 32
	if v := os.Getenv("TABLE_CACHE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			log.Fatalf("Invalid TABLE_CACHE_SIZE %q: %v", v, err)
		}
		cacheSize = n
	}

	stop, err := logging.Setup(os.Getenv("LOG_FILE"), os.Stderr)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer stop()

	if info, err := os.Stat(referenceDir); err == nil && info.IsDir() {
		log.Printf("Reference directory found: %s", referenceDir)
	} else {
		log.Printf("Reference directory not found at: %s (error: %v)", referenceDir, err)
	}

	tables, err := data.NewTableCache(cacheSize)
	if err != nil {
		log.Fatalf("Failed to create table cache: %v", err)
	}

	if os.Getenv("API_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(api.Options{
		ReferenceDir: referenceDir,
		CORSOrigins:  splitList(os.Getenv("CORS_ORIGINS")),
		Tables:       tables,
		RequestLog:   true,
	})

	addr := fmt.Sprintf(":%s", port)
	log.Printf("Starting API server on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
