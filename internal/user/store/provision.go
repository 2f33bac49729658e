package store

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	collectivemodels "opencollective/internal/collective/models"
	"opencollective/internal/collective/slug"
	"opencollective/internal/user/models"
	id "opencollective/pkg/domain"
	"opencollective/pkg/email"
	"opencollective/pkg/platform/sentinel"
	"opencollective/pkg/secrets"
)

const maxSlugAttempts = 5

// CollectiveCreator is the slice of the collective store needed to give a new
// user its personal collective.
type CollectiveCreator interface {
	CreateIfSlugAvailable(ctx context.Context, c *collectivemodels.Collective) error
}

// Provisioned is the outcome of a find-or-create.
type Provisioned struct {
	User *models.User
	// Created is true when this call synthesized the user.
	Created bool
	// ConfirmationToken is the cleartext email confirmation token. Only set
	// when Created is true.
	ConfirmationToken string
}

// provisionAccount creates the personal USER collective for profile and
// builds the user row that references it. The user is not persisted. The
// personal slug is never reserved and never one of excludeSlugs.
func provisionAccount(ctx context.Context, collectives CollectiveCreator, profile models.Profile, now time.Time,
	excludeSlugs []string) (*models.User, *collectivemodels.Collective, string, error) {
	userID := id.UserID(uuid.New())
	personal, err := createPersonalCollective(ctx, collectives, profile, userID, now, excludeSlugs)
	if err != nil {
		return nil, nil, "", err
	}

	user, err := models.NewUser(userID, profile, personal.ID, now)
	if err != nil {
		return nil, nil, "", err
	}
	token, err := secrets.Issue()
	if err != nil {
		return nil, nil, "", err
	}
	user.EmailConfirmationTokenHash = token.Hash
	return user, personal, token.Cleartext, nil
}

func createPersonalCollective(ctx context.Context, collectives CollectiveCreator, profile models.Profile, userID id.UserID,
	now time.Time, excludeSlugs []string) (*collectivemodels.Collective, error) {
	base := email.SlugBase(profile.Email)
	candidate := base
	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		if attempt > 0 {
			candidate = base + "-" + randomSuffix()
		}
		if !personalSlugAllowed(candidate, excludeSlugs) {
			continue
		}
		c, err := collectivemodels.NewCollective(id.CollectiveID(uuid.New()), candidate, profile.Name,
			collectivemodels.TypeUser, &userID, now)
		if err != nil {
			return nil, err
		}
		c.IsActive = true
		err = collectives.CreateIfSlugAvailable(ctx, c)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, fmt.Errorf("create personal collective: %w", err)
		}
	}
	return nil, fmt.Errorf("no free slug for %q after %d attempts: %w", base, maxSlugAttempts, sentinel.ErrConflict)
}

func personalSlugAllowed(candidate string, excludeSlugs []string) bool {
	if slug.IsReserved(candidate) {
		return false
	}
	for _, excluded := range excludeSlugs {
		if strings.EqualFold(candidate, strings.TrimSpace(excluded)) {
			return false
		}
	}
	return true
}

func randomSuffix() string {
	buf := make([]byte, 3)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
