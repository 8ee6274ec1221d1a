package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseBloodGroup(t *testing.T) {
	for _, g := range AllBloodGroups() {
		got, err := ParseBloodGroup(string(g))
		assert.NoError(t, err)
		assert.Equal(t, g, got)
	}

	for _, raw := range []string{"", "a+", "C+", "AB", "O", "o-", "A +"} {
		_, err := ParseBloodGroup(raw)
		assert.ErrorIs(t, err, ErrInvalidBloodGroup, "raw=%q", raw)
	}
}

func TestAllBloodGroupsIsComplete(t *testing.T) {
	assert.Len(t, AllBloodGroups(), 8)
}
