package secrets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "opencollective/pkg/domain-errors"
)

func TestIssueAndVerify(t *testing.T) {
	tok, err := Issue()
	require.NoError(t, err)
	assert.NotEmpty(t, tok.Cleartext)
	assert.NotEqual(t, tok.Cleartext, tok.Hash)

	require.NoError(t, Verify(tok.Cleartext, tok.Hash))

	err = Verify("wrong", tok.Hash)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))

	err = Verify("", tok.Hash)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestIssue_Unique(t *testing.T) {
	a, err := Issue()
	require.NoError(t, err)
	b, err := Issue()
	require.NoError(t, err)
	assert.NotEqual(t, a.Cleartext, b.Cleartext)
}
