package verification

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStub(t *testing.T) {
	ctx := context.Background()
	stub := NewStub(100)

	require.NoError(t, stub.CheckAdmin(ctx, "acme/repo", "tok"))
	require.NoError(t, stub.CheckPopularity(ctx, "acme/repo", "tok"))

	stub.DenyAdmin("acme")
	err := stub.CheckAdmin(ctx, "acme", "tok")
	assert.Equal(t, ErrorNotAdmin, CategoryOf(err))
	assert.Equal(t, "We could not verify that you're admin of the GitHub organization", UserMessage(err))

	stub.DenyPopularity("acme/repo")
	err = stub.CheckPopularity(ctx, "acme/repo", "tok")
	assert.Equal(t, ErrorThreshold, CategoryOf(err))
	assert.Equal(t, "The repository need to have at least 100 stars to be accepted.", UserMessage(err))

	admin, popularity := stub.Calls()
	assert.Equal(t, []string{"acme/repo", "acme"}, admin)
	assert.Equal(t, []string{"acme/repo", "acme/repo"}, popularity)
}

func TestCategoryOfForeignError(t *testing.T) {
	assert.Equal(t, ErrorCategory(""), CategoryOf(assert.AnError))
	assert.Equal(t, assert.AnError.Error(), UserMessage(assert.AnError))
}
