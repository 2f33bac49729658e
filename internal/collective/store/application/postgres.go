package application

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"opencollective/internal/collective/models"
	"opencollective/internal/platform/postgres"
	id "opencollective/pkg/domain"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Create(ctx context.Context, app *models.HostApplication) error {
	query := `
		INSERT INTO host_applications (id, collective_id, host_collective_id, status, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := postgres.Conn(ctx, s.db).ExecContext(ctx, query,
		app.ID,
		uuid.UUID(app.CollectiveID),
		uuid.UUID(app.HostID),
		string(app.Status),
		app.Message,
		app.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert host application: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByCollective(ctx context.Context, collectiveID id.CollectiveID) ([]*models.HostApplication, error) {
	query := `
		SELECT id, collective_id, host_collective_id, status, message, created_at
		FROM host_applications
		WHERE collective_id = $1
		ORDER BY created_at
	`
	rows, err := postgres.Conn(ctx, s.db).QueryContext(ctx, query, uuid.UUID(collectiveID))
	if err != nil {
		return nil, fmt.Errorf("query host applications: %w", err)
	}
	defer rows.Close()

	var out []*models.HostApplication
	for rows.Next() {
		var (
			app         models.HostApplication
			cid, hostID uuid.UUID
			status      string
		)
		if err := rows.Scan(&app.ID, &cid, &hostID, &status, &app.Message, &app.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan host application: %w", err)
		}
		app.CollectiveID = id.CollectiveID(cid)
		app.HostID = id.CollectiveID(hostID)
		app.Status = models.ApplicationStatus(status)
		out = append(out, &app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate host applications: %w", err)
	}
	return out, nil
}
