package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	cases := []struct {
		in      string
		want    Status
		wantErr bool
	}{
		{"waiting", StatusWaiting, false},
		{"confirmed", StatusConfirmed, false},
		{"completed", StatusCompleted, false},
		{"cancelled", StatusCancelled, false},
		{"Cancelled", StatusCancelled, false},
		{"COMPLETED", StatusCompleted, false},
		{" waiting ", StatusWaiting, false},
		{"", "", true},
		{"rejected by admin", "", true},
		{"done", "", true},
	}

	for _, tc := range cases {
		got, err := ParseStatus(tc.in)
		if tc.wantErr {
			assert.Error(t, err, "input %q", tc.in)
			continue
		}
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestDayLabel(t *testing.T) {
	day, err := DayLabel("2025-03-01")
	require.NoError(t, err)
	assert.Equal(t, "Saturday", day)

	_, err = DayLabel("01/03/2025")
	assert.Error(t, err)
}
