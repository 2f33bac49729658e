package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "opencollective/pkg/domain"
	dErrors "opencollective/pkg/domain-errors"
)

func TestProfile_NormalizeAndValidate(t *testing.T) {
	t.Run("normalizes email and derives name", func(t *testing.T) {
		p := Profile{Email: "  Jane.Doe@Example.com "}
		p.Normalize()
		assert.Equal(t, "jane.doe@example.com", p.Email)
		assert.Equal(t, "Jane Doe", p.Name)
		require.NoError(t, p.Validate())
	})

	t.Run("keeps explicit name", func(t *testing.T) {
		p := Profile{Email: "jane@example.com", Name: "Jane from Acme"}
		p.Normalize()
		assert.Equal(t, "Jane from Acme", p.Name)
	})

	t.Run("rejects missing email", func(t *testing.T) {
		p := Profile{}
		p.Normalize()
		err := p.Validate()
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("rejects malformed email", func(t *testing.T) {
		p := Profile{Email: "not-an-email"}
		p.Normalize()
		assert.True(t, dErrors.HasCode(p.Validate(), dErrors.CodeValidation))
	})
}

func TestNewUser(t *testing.T) {
	now := time.Now()

	_, err := NewUser(id.UserID(uuid.New()), Profile{Email: "a@b.co"}, id.CollectiveID{}, now)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))

	u, err := NewUser(id.UserID(uuid.New()), Profile{Email: "A@B.co", Name: "A"}, id.CollectiveID(uuid.New()), now)
	require.NoError(t, err)
	assert.Equal(t, "a@b.co", u.Email)
	assert.Equal(t, now, u.CreatedAt)
}
