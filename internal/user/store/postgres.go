package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"opencollective/internal/platform/postgres"
	"opencollective/internal/user/models"
	id "opencollective/pkg/domain"
	"opencollective/pkg/email"
	"opencollective/pkg/platform/sentinel"
	"opencollective/pkg/requestcontext"
)

// PostgresStore persists users. FindOrCreateByEmail relies on the
// users_email_key constraint to settle concurrent creators.
type PostgresStore struct {
	db          *sql.DB
	collectives CollectiveCreator
}

func NewPostgres(db *sql.DB, collectives CollectiveCreator) *PostgresStore {
	return &PostgresStore{db: db, collectives: collectives}
}

const userColumns = `id, email, name, collective_id, email_confirmation_token_hash, created_at`

func (s *PostgresStore) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return s.scanOne(postgres.Conn(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(userID)))
}

func (s *PostgresStore) FindByEmail(ctx context.Context, address string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return s.scanOne(postgres.Conn(ctx, s.db).QueryRowContext(ctx, query, email.Normalize(address)))
}

func (s *PostgresStore) FindOrCreateByEmail(ctx context.Context, profile models.Profile, excludeSlugs ...string) (*Provisioned, error) {
	profile.Normalize()

	existing, err := s.FindByEmail(ctx, profile.Email)
	if err == nil {
		return &Provisioned{User: existing}, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, err
	}

	user, personal, token, err := provisionAccount(ctx, s.collectives, profile, requestcontext.Now(ctx), excludeSlugs)
	if err != nil {
		return nil, err
	}

	conn := postgres.Conn(ctx, s.db)
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT ON CONSTRAINT users_email_key DO NOTHING
	`
	res, err := conn.ExecContext(ctx, query,
		uuid.UUID(user.ID),
		user.Email,
		user.Name,
		uuid.UUID(user.CollectiveID),
		user.EmailConfirmationTokenHash,
		user.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	if rows == 1 {
		return &Provisioned{User: user, Created: true, ConfirmationToken: token}, nil
	}

	// Lost the race: drop the orphaned personal collective and use the winner.
	if _, err := conn.ExecContext(ctx, `DELETE FROM collectives WHERE id = $1`, uuid.UUID(personal.ID)); err != nil {
		return nil, fmt.Errorf("discard personal collective: %w", err)
	}
	winner, err := s.FindByEmail(ctx, profile.Email)
	if err != nil {
		return nil, err
	}
	return &Provisioned{User: winner}, nil
}

func (s *PostgresStore) scanOne(row *sql.Row) (*models.User, error) {
	var (
		u                    models.User
		userID, collectiveID uuid.UUID
	)
	err := row.Scan(&userID, &u.Email, &u.Name, &collectiveID, &u.EmailConfirmationTokenHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	u.ID = id.UserID(userID)
	u.CollectiveID = id.CollectiveID(collectiveID)
	return &u, nil
}
