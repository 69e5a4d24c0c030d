// Command apiclient registers an API client that may request tokens.
// Usage: go run ./cmd/apiclient -name "Batch scanner" -id scanner -secret s3cretpass
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"adpnorm/internal/config"
	"adpnorm/internal/repository/postgres"
	"adpnorm/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	name := flag.String("name", "", "display name")
	clientID := flag.String("id", "", "client id used to request tokens (required)")
	secret := flag.String("secret", "", "client secret, at least 8 characters (required)")
	flag.Parse()

	if *clientID == "" || *secret == "" {
		flag.Usage()
		return fmt.Errorf("-id and -secret are required")
	}

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer func() { _ = db.Close() }()

	authSvc := service.NewAuthService(postgres.NewAPIClientRepo(db), cfg.JWT)
	client, err := authSvc.RegisterClient(context.Background(), service.RegisterClientInput{
		Name:         *name,
		ClientID:     *clientID,
		ClientSecret: *secret,
	})
	if err != nil {
		return fmt.Errorf("registering client: %w", err)
	}

	log.Printf("Registered client %s (%s)", client.ClientID, client.ID)
	return nil
}
