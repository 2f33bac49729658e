package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"opencollective/internal/collective/actor"
	"opencollective/internal/collective/models"
	"opencollective/internal/collective/service"
	"opencollective/internal/collective/store/application"
	collectivestore "opencollective/internal/collective/store/collective"
	"opencollective/internal/collective/store/connectedaccount"
	"opencollective/internal/collective/store/membership"
	"opencollective/internal/platform/config"
	"opencollective/internal/platform/postgres"
	userstore "opencollective/internal/user/store"
	id "opencollective/pkg/domain"
	audit "opencollective/pkg/platform/audit"
	auditmemory "opencollective/pkg/platform/audit/store/memory"
	auditpg "opencollective/pkg/platform/audit/store/postgres"
	"opencollective/pkg/platform/sentinel"
)

type collectiveStore interface {
	service.CollectiveStore
}

type membershipStore interface {
	service.MembershipStore
	HasRole(ctx context.Context, collectiveID id.CollectiveID, userID id.UserID, role models.Role) (bool, error)
}

type accountStore interface {
	FindByCollectiveAndService(ctx context.Context, collectiveID id.CollectiveID, service string) (*models.ConnectedAccount, error)
}

// storeSet is the persistence backend. db is nil in in-memory mode.
type storeSet struct {
	db           *sql.DB
	collectives  collectiveStore
	memberships  membershipStore
	applications service.ApplicationStore
	accounts     accountStore
	users        actor.UserStore
	activities   audit.Store
	tx           service.TxRunner
}

// buildStores uses Postgres when DATABASE_URL is set and in-memory stores
// otherwise. The returned cleanup closes the pool.
func buildStores(ctx context.Context, cfg config.Server, log *slog.Logger) (*storeSet, func(), error) {
	if cfg.DatabaseURL == "" {
		log.WarnContext(ctx, "DATABASE_URL not set; using in-memory stores")
		collectives := collectivestore.NewInMemory()
		return &storeSet{
			collectives:  collectives,
			memberships:  membership.NewInMemory(),
			applications: application.NewInMemory(),
			accounts:     connectedaccount.NewInMemory(),
			users:        userstore.NewInMemory(collectives),
			activities:   auditmemory.NewInMemoryStore(),
			tx:           service.NewMemoryTx(),
		}, func() {}, nil
	}

	db, err := postgres.Open(ctx, postgres.Config{
		URL:             cfg.DatabaseURL,
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
	})
	if err != nil {
		return nil, nil, err
	}
	if err := postgres.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	collectives := collectivestore.NewPostgres(db)
	runner := postgres.NewTxRunner(db)
	if cfg.TxTimeout > 0 {
		runner = runner.WithTimeout(cfg.TxTimeout)
	}
	return &storeSet{
		db:           db,
		collectives:  collectives,
		memberships:  membership.NewPostgres(db),
		applications: application.NewPostgres(db),
		accounts:     connectedaccount.NewPostgres(db),
		users:        userstore.NewPostgres(db, collectives),
		activities:   auditpg.New(db),
		tx:           runner,
	}, func() { _ = db.Close() }, nil
}

// seedHosts makes sure the open source and trusted hosts exist as active host
// accounts. Existing rows are left untouched.
func seedHosts(ctx context.Context, collectives collectiveStore, hosts config.HostsConfig, log *slog.Logger) error {
	for _, slugValue := range []string{hosts.OpenSourceSlug, hosts.TrustedAutoCreateSlug} {
		if slugValue == "" {
			continue
		}
		host, err := models.NewCollective(id.CollectiveID(uuid.New()), slugValue, hostName(slugValue), models.TypeOrganization, nil, time.Now())
		if err != nil {
			return fmt.Errorf("seed host %s: %w", slugValue, err)
		}
		host.IsHostAccount = true
		host.IsActive = true
		err = collectives.CreateIfSlugAvailable(ctx, host)
		switch {
		case errors.Is(err, sentinel.ErrAlreadyUsed):
		case err != nil:
			return fmt.Errorf("seed host %s: %w", slugValue, err)
		default:
			log.InfoContext(ctx, "seeded host", "slug", slugValue)
		}
	}
	return nil
}

func hostName(slugValue string) string {
	parts := strings.Split(slugValue, "-")
	for i, p := range parts {
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}
