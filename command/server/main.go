package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/purinat/auth-account-server/internal/bootstrap"
	"github.com/purinat/auth-account-server/package/env"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) > 1 && os.Args[1] == "--health" {
		performHealthCheck()
		return
	}

	bootstrap.Run()
}

func performHealthCheck() {
	host := env.MustGet("HOST", "0.0.0.0")
	port := env.MustGet("PORT", "3000")
	healthURL := fmt.Sprintf("http://%s:%s/health", host, port)

	client := &http.Client{
		Timeout: 2 * time.Second,
	}

	resp, err := client.Get(healthURL)
	if err != nil {
		fmt.Printf("Health check failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		fmt.Println("Health check passed")
		os.Exit(0)
	}

	fmt.Printf("Health check failed with status: %d\n", resp.StatusCode)
	os.Exit(1)
}
