package main

import (
	"fmt"
	"os"

	"github.com/arnavshah/vetclinic-scheduler-api/internal/config"
	"github.com/arnavshah/vetclinic-scheduler-api/pkg/auth"
)

func main() {
	config.LoadDotEnv()

	if len(os.Args) < 2 {
		fmt.Println("Usage: go run ./cmd/keygen <clinicID>")
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	if cfg.APIMasterSecret == "" {
		fmt.Println("Error: API_MASTER_SECRET not found in .env")
		os.Exit(1)
	}

	clinicID := os.Args[1]
	key := auth.NewAuthenticator(cfg.JWTSecret, cfg.APIMasterSecret).GenerateHMACKey(clinicID)
	fmt.Printf("Generated Key for %s:\n%s\n", clinicID, key)
}
