package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"adpnorm/internal/domain"
	"adpnorm/internal/port"
)

type apiClientRepo struct {
	db *sqlx.DB
}

// NewAPIClientRepo creates a new PostgreSQL-backed APIClientRepository.
func NewAPIClientRepo(db *sqlx.DB) port.APIClientRepository {
	return &apiClientRepo{db: db}
}

func (r *apiClientRepo) Create(ctx context.Context, client *domain.APIClient) error {
	client.ID = uuid.New()
	client.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO api_clients (id, client_id, secret_hash, name, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		client.ID, client.ClientID, client.SecretHash, client.Name, client.CreatedAt)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return domain.ErrDuplicateClientID
		}
		return fmt.Errorf("apiClientRepo.Create: %w", err)
	}
	return nil
}

func (r *apiClientRepo) GetByClientID(ctx context.Context, clientID string) (*domain.APIClient, error) {
	var client domain.APIClient
	err := r.db.GetContext(ctx, &client,
		"SELECT * FROM api_clients WHERE client_id = $1", clientID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("apiClientRepo.GetByClientID: %w", err)
	}
	return &client, nil
}
