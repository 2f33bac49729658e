package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	id "opencollective/pkg/domain"
	audit "opencollective/pkg/platform/audit"
	txcontext "opencollective/pkg/platform/tx"
)

// Store implements audit.Store using the transactional outbox pattern.
// Each activity row is written together with an outbox row that the relay
// publishes to Kafka.
type Store struct {
	db *sql.DB
}

// New creates a new PostgreSQL audit store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// outboxPayload is the JSON structure published to Kafka.
type outboxPayload struct {
	ID           string         `json:"id"`
	Type         string         `json:"type"`
	Category     string         `json:"category"`
	Timestamp    string         `json:"timestamp"`
	UserID       string         `json:"user_id,omitempty"`
	CollectiveID string         `json:"collective_id,omitempty"`
	Subject      string         `json:"subject,omitempty"`
	RequestID    string         `json:"request_id,omitempty"`
	Data         map[string]any `json:"data,omitempty"`
}

// Append writes the activity and its outbox entry. Inside a caller's
// transaction both rows join it; otherwise they commit together on their own.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	if event.ID.IsNil() {
		event.ID = id.ActivityID(uuid.New())
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	// Always derive category from action - eventCategories map is the source of truth
	event.Category = audit.AuditEvent(event.Action).Category()

	if tx, ok := txcontext.From(ctx); ok {
		return s.append(ctx, tx, event)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin audit transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()
	if err := s.append(ctx, tx, event); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit audit transaction: %w", err)
	}
	return nil
}

func (s *Store) append(ctx context.Context, exec dbExecutor, event audit.Event) error {
	data := event.Data
	if data == nil {
		data = map[string]any{}
	}
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal activity data: %w", err)
	}

	var userID, collectiveID *uuid.UUID
	payload := outboxPayload{
		ID:        event.ID.String(),
		Type:      event.Action,
		Category:  string(event.Category),
		Timestamp: event.Timestamp.UTC().Format(time.RFC3339Nano),
		Subject:   event.Subject,
		RequestID: event.RequestID,
		Data:      data,
	}
	if !event.UserID.IsNil() {
		uid := uuid.UUID(event.UserID)
		userID = &uid
		payload.UserID = uid.String()
	}
	if event.CollectiveID != nil && !event.CollectiveID.IsNil() {
		cid := uuid.UUID(*event.CollectiveID)
		collectiveID = &cid
		payload.CollectiveID = cid.String()
	}

	activityQuery := `
		INSERT INTO activities (id, type, category, user_id, collective_id, subject, request_id, data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err = exec.ExecContext(ctx, activityQuery,
		uuid.UUID(event.ID),
		event.Action,
		string(event.Category),
		userID,
		collectiveID,
		event.Subject,
		event.RequestID,
		dataBytes,
		event.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal outbox payload: %w", err)
	}

	// Determine aggregate type and ID
	aggregateType := "activity"
	aggregateID := event.ID.String()
	if collectiveID != nil {
		aggregateType = "collective"
		aggregateID = collectiveID.String()
	}

	outboxQuery := `
		INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err = exec.ExecContext(ctx, outboxQuery,
		uuid.New(),
		aggregateType,
		aggregateID,
		event.Action,
		payloadBytes,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}

// ListByUser returns activities performed by a user, oldest first.
func (s *Store) ListByUser(ctx context.Context, userID id.UserID) ([]audit.Event, error) {
	query := `
		SELECT id, type, category, user_id, collective_id, subject, request_id, data, created_at
		FROM activities
		WHERE user_id = $1
		ORDER BY created_at
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(userID))
	if err != nil {
		return nil, fmt.Errorf("query activities: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			event     audit.Event
			eventID   uuid.UUID
			category  string
			uid, cid  uuid.NullUUID
			dataBytes []byte
		)
		if err := rows.Scan(&eventID, &event.Action, &category, &uid, &cid,
			&event.Subject, &event.RequestID, &dataBytes, &event.Timestamp); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		event.ID = id.ActivityID(eventID)
		event.Category = audit.EventCategory(category)
		if uid.Valid {
			event.UserID = id.UserID(uid.UUID)
		}
		if cid.Valid {
			collectiveID := id.CollectiveID(cid.UUID)
			event.CollectiveID = &collectiveID
		}
		if len(dataBytes) > 0 {
			if err := json.Unmarshal(dataBytes, &event.Data); err != nil {
				return nil, fmt.Errorf("decode activity data: %w", err)
			}
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate activities: %w", err)
	}
	return events, nil
}
