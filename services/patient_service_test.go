package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAgeFromDOB(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	age := ageFromDOB("1990-03-01", now)
	require.NotNil(t, age)
	assert.Equal(t, 35, *age)

	// Birthday not reached yet this year.
	age = ageFromDOB("1990-06-15", now)
	require.NotNil(t, age)
	assert.Equal(t, 34, *age)

	assert.Nil(t, ageFromDOB("", now))
	assert.Nil(t, ageFromDOB("15/06/1990", now))
	assert.Nil(t, ageFromDOB("2030-01-01", now))
}
