package membership

import (
	"context"
	"database/sql"
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

func (s *PostgresStore) Create(ctx context.Context, m *models.Membership) error {
	query := `
		INSERT INTO members (id, collective_id, member_collective_id, user_id, role, created_by_user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := postgres.Conn(ctx, s.db).ExecContext(ctx, query,
		uuid.UUID(m.ID),
		uuid.UUID(m.CollectiveID),
		uuid.UUID(m.MemberCollectiveID),
		uuid.UUID(m.UserID),
		string(m.Role),
		uuid.UUID(m.CreatedByUserID),
		m.CreatedAt,
	)
	if err != nil {
		if postgres.IsUniqueViolation(err, "members_collective_member_role_key") {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert membership: %w", err)
	}
	return nil
}

func (s *PostgresStore) HasRole(ctx context.Context, collectiveID id.CollectiveID, userID id.UserID, role models.Role) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM members WHERE collective_id = $1 AND user_id = $2 AND role = $3
		)
	`
	var exists bool
	err := postgres.Conn(ctx, s.db).QueryRowContext(ctx, query,
		uuid.UUID(collectiveID), uuid.UUID(userID), string(role),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("query membership: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) ListByCollective(ctx context.Context, collectiveID id.CollectiveID) ([]*models.Membership, error) {
	query := `
		SELECT id, collective_id, member_collective_id, user_id, role, created_by_user_id, created_at
		FROM members
		WHERE collective_id = $1
		ORDER BY created_at
	`
	rows, err := postgres.Conn(ctx, s.db).QueryContext(ctx, query, uuid.UUID(collectiveID))
	if err != nil {
		return nil, fmt.Errorf("query memberships: %w", err)
	}
	defer rows.Close()

	var out []*models.Membership
	for rows.Next() {
		var (
			m                                   models.Membership
			mid, cid, memberCID, uid, createdBy uuid.UUID
			role                                string
		)
		if err := rows.Scan(&mid, &cid, &memberCID, &uid, &role, &createdBy, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan membership: %w", err)
		}
		m.ID = id.MembershipID(mid)
		m.CollectiveID = id.CollectiveID(cid)
		m.MemberCollectiveID = id.CollectiveID(memberCID)
		m.UserID = id.UserID(uid)
		m.Role = models.Role(role)
		m.CreatedByUserID = id.UserID(createdBy)
		out = append(out, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate memberships: %w", err)
	}
	return out, nil
}
