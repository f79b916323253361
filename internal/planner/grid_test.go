package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AyoAlfonso/motion-ai/internal/domain"
)

func TestGrid_Default(t *testing.T) {
	slots, err := Grid(9, 17)
	require.NoError(t, err)

	require.Len(t, slots, 16)
	assert.Equal(t, "9:00", slots[0])
	assert.Equal(t, "9:30", slots[1])
	assert.Equal(t, "10:00", slots[2])
	assert.Equal(t, "16:30", slots[15])
}

func TestGrid_UnpaddedHours(t *testing.T) {
	slots, err := Grid(8, 11)
	require.NoError(t, err)
	assert.Equal(t, []string{"8:00", "8:30", "9:00", "9:30", "10:00", "10:30"}, slots)
}

func TestGrid_SingleHour(t *testing.T) {
	slots, err := Grid(9, 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"9:00", "9:30"}, slots)
}

func TestGrid_InvalidBounds(t *testing.T) {
	tests := []struct {
		name       string
		start, end int
	}{
		{"equal", 9, 9},
		{"inverted", 17, 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Grid(tt.start, tt.end)
			var cfgErr *domain.ConfigurationError
			require.ErrorAs(t, err, &cfgErr)
		})
	}
}

func TestGridLabels_SlotMinutes(t *testing.T) {
	slots, err := gridLabels(9, 10, 15)
	require.NoError(t, err)
	assert.Equal(t, []string{"9:00", "9:15", "9:30", "9:45"}, slots)
}

func TestGridLabels_InvalidSlotMinutes(t *testing.T) {
	for _, m := range []int{0, -30, 45, 70} {
		_, err := gridLabels(9, 17, m)
		var cfgErr *domain.ConfigurationError
		require.ErrorAs(t, err, &cfgErr, "slotMinutes=%d", m)
	}
}
