package collective

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"opencollective/internal/collective/models"
	"opencollective/internal/platform/postgres"
	id "opencollective/pkg/domain"
	"opencollective/pkg/platform/sentinel"
)

// PostgresStore persists collectives. The collectives_slug_key constraint is
// the authoritative uniqueness guard; lookups before insert are advisory.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const collectiveColumns = `id, slug, name, description, type, tags, settings, data,
	is_active, is_host_account, host_fee_percent, host_collective_id, approved_at,
	created_by_user_id, created_at, updated_at`

func (s *PostgresStore) CreateIfSlugAvailable(ctx context.Context, c *models.Collective) error {
	settings, data, err := marshalDocuments(c)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO collectives (` + collectiveColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT ON CONSTRAINT collectives_slug_key DO NOTHING
	`
	res, err := postgres.Conn(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(c.ID),
		strings.ToLower(c.Slug),
		c.Name,
		c.Description,
		string(c.Type),
		pq.Array(c.Tags),
		settings,
		data,
		c.IsActive,
		c.IsHostAccount,
		nullFloat(c.HostFeePercent),
		nullCollectiveID(c.HostCollectiveID),
		nullTime(c.ApprovedAt),
		nullUserID(c.CreatedByUserID),
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err, "collectives_slug_key") {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert collective: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert collective: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrAlreadyUsed
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, collectiveID id.CollectiveID) (*models.Collective, error) {
	query := `SELECT ` + collectiveColumns + ` FROM collectives WHERE id = $1`
	return s.scanOne(postgres.Conn(ctx, s.db).QueryRowContext(ctx, query, uuid.UUID(collectiveID)))
}

func (s *PostgresStore) FindBySlug(ctx context.Context, slug string) (*models.Collective, error) {
	query := `SELECT ` + collectiveColumns + ` FROM collectives WHERE slug = $1`
	return s.scanOne(postgres.Conn(ctx, s.db).QueryRowContext(ctx, query, strings.ToLower(slug)))
}

// Update persists mutable fields. The slug is immutable.
func (s *PostgresStore) Update(ctx context.Context, c *models.Collective) error {
	settings, data, err := marshalDocuments(c)
	if err != nil {
		return err
	}
	query := `
		UPDATE collectives
		SET name = $2, description = $3, tags = $4, settings = $5, data = $6,
			is_active = $7, is_host_account = $8, host_fee_percent = $9,
			host_collective_id = $10, approved_at = $11, updated_at = $12
		WHERE id = $1
	`
	res, err := postgres.Conn(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(c.ID),
		c.Name,
		c.Description,
		pq.Array(c.Tags),
		settings,
		data,
		c.IsActive,
		c.IsHostAccount,
		nullFloat(c.HostFeePercent),
		nullCollectiveID(c.HostCollectiveID),
		nullTime(c.ApprovedAt),
		c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update collective: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update collective: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// AttachHost records the host binding of c. It fails with ErrInvalidState
// when the collective already has a host.
func (s *PostgresStore) AttachHost(ctx context.Context, c *models.Collective) error {
	if !c.HasHost() {
		return sentinel.ErrInvalidState
	}
	query := `
		UPDATE collectives
		SET host_collective_id = $2, host_fee_percent = $3, approved_at = $4,
			is_active = $5, updated_at = $6
		WHERE id = $1 AND host_collective_id IS NULL
	`
	res, err := postgres.Conn(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(c.ID),
		nullCollectiveID(c.HostCollectiveID),
		nullFloat(c.HostFeePercent),
		nullTime(c.ApprovedAt),
		c.IsActive,
		c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("attach host: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("attach host: %w", err)
	}
	if affected == 0 {
		if _, err := s.FindByID(ctx, c.ID); err != nil {
			return err
		}
		return sentinel.ErrInvalidState
	}
	return nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := postgres.Conn(ctx, s.db).QueryRowContext(ctx, `SELECT COUNT(*) FROM collectives`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count collectives: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) scanOne(row *sql.Row) (*models.Collective, error) {
	var (
		c           models.Collective
		rawID       uuid.UUID
		typ         string
		tags        []string
		settings    []byte
		data        []byte
		hostFee     sql.NullFloat64
		hostID      *uuid.UUID
		approvedAt  sql.NullTime
		createdByID *uuid.UUID
	)
	err := row.Scan(
		&rawID, &c.Slug, &c.Name, &c.Description, &typ, pq.Array(&tags), &settings, &data,
		&c.IsActive, &c.IsHostAccount, &hostFee, &hostID, &approvedAt,
		&createdByID, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan collective: %w", err)
	}

	c.ID = id.CollectiveID(rawID)
	c.Type = models.Type(typ)
	c.Tags = tags
	if c.Tags == nil {
		c.Tags = []string{}
	}
	if len(settings) > 0 {
		if err := json.Unmarshal(settings, &c.Settings); err != nil {
			return nil, fmt.Errorf("decode settings: %w", err)
		}
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &c.Data); err != nil {
			return nil, fmt.Errorf("decode data: %w", err)
		}
	}
	if hostFee.Valid {
		fee := hostFee.Float64
		c.HostFeePercent = &fee
	}
	if hostID != nil {
		hid := id.CollectiveID(*hostID)
		c.HostCollectiveID = &hid
	}
	if approvedAt.Valid {
		at := approvedAt.Time
		c.ApprovedAt = &at
	}
	if createdByID != nil {
		uid := id.UserID(*createdByID)
		c.CreatedByUserID = &uid
	}
	return &c, nil
}

func marshalDocuments(c *models.Collective) ([]byte, []byte, error) {
	settings := c.Settings
	if settings == nil {
		settings = models.Settings{}
	}
	settingsJSON, err := json.Marshal(settings)
	if err != nil {
		return nil, nil, fmt.Errorf("encode settings: %w", err)
	}
	var dataJSON []byte
	if c.Data != nil {
		dataJSON, err = json.Marshal(c.Data)
		if err != nil {
			return nil, nil, fmt.Errorf("encode data: %w", err)
		}
	}
	return settingsJSON, dataJSON, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullTime(v *time.Time) sql.NullTime {
	if v == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *v, Valid: true}
}

func nullCollectiveID(v *id.CollectiveID) *uuid.UUID {
	if v == nil {
		return nil
	}
	u := uuid.UUID(*v)
	return &u
}

func nullUserID(v *id.UserID) *uuid.UUID {
	if v == nil {
		return nil
	}
	u := uuid.UUID(*v)
	return &u
}
