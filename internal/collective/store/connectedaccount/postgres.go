package connectedaccount

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"opencollective/internal/collective/models"
	"opencollective/internal/platform/postgres"
	id "opencollective/pkg/domain"
	"opencollective/pkg/platform/sentinel"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, account *models.ConnectedAccount) error {
	query := `
		INSERT INTO connected_accounts (id, collective_id, service, username, token, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := postgres.Conn(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(account.ID),
		uuid.UUID(account.CollectiveID),
		account.Service,
		account.Username,
		account.Token,
		account.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert connected account: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByCollectiveAndService(ctx context.Context, collectiveID id.CollectiveID, service string) (*models.ConnectedAccount, error) {
	query := `
		SELECT id, collective_id, service, username, token, created_at
		FROM connected_accounts
		WHERE collective_id = $1 AND service = $2
		ORDER BY created_at DESC
		LIMIT 1
	`
	var (
		account        models.ConnectedAccount
		accountID, cid uuid.UUID
	)
	err := postgres.Conn(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(collectiveID), service).Scan(
		&accountID, &cid, &account.Service, &account.Username, &account.Token, &account.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find connected account: %w", err)
	}
	account.ID = id.ConnectedAccountID(accountID)
	account.CollectiveID = id.CollectiveID(cid)
	return &account, nil
}
