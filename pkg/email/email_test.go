package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "jane@example.com", Normalize("  Jane@Example.COM "))
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"jane@example.com", true},
		{"jane.doe+oc@mail.example.org", true},
		{"", false},
		{"@example.com", false},
		{"jane@", false},
		{"jane@example", false},
		{"jane@@example.com", false},
		{"jane doe@example.com", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValid(tt.input))
		})
	}
}

func TestDeriveNameFromEmail(t *testing.T) {
	assert.Equal(t, "Jane Doe", DeriveNameFromEmail("jane.doe@example.com"))
	assert.Equal(t, "Bob", DeriveNameFromEmail("bob@example.com"))
	assert.Equal(t, "Incognito", DeriveNameFromEmail("@example.com"))
}

func TestSlugBase(t *testing.T) {
	assert.Equal(t, "jane-doe", SlugBase("Jane.Doe@example.com"))
	assert.Equal(t, "bob-oc", SlugBase("bob+oc@example.com"))
	assert.Equal(t, "user", SlugBase("...@example.com"))
	assert.Equal(t, "rn", SlugBase("rén@example.com"))
}
