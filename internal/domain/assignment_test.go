package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShiftTypes_ReturnsFreshSlice(t *testing.T) {
	list := ShiftTypes()
	require.Equal(t, []ShiftType{ShiftMorning, ShiftAfternoon, ShiftFullDay}, list)

	list[0] = "Night"

	assert.Equal(t, []ShiftType{ShiftMorning, ShiftAfternoon, ShiftFullDay}, ShiftTypes())
	st, err := ParseShiftType("Morning")
	require.NoError(t, err)
	assert.Equal(t, ShiftMorning, st)
}

func TestParseShiftType_Unknown(t *testing.T) {
	_, err := ParseShiftType("Night")
	assert.Error(t, err)
}
