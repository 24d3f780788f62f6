package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCode(t *testing.T) {
	tests := []struct {
		name     string
		prefix   string
		sequence int
		expected string
	}{
		{
			name:     "Basic Case",
			prefix:   "DR",
			sequence: 123,
			expected: "SHF-DR123",
		},
		{
			name:     "Lower case prefix",
			prefix:   "kb",
			sequence: 456,
			expected: "SHF-KB456",
		},
		{
			name:     "No category",
			prefix:   "",
			sequence: 7,
			expected: "SHF-7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code := NewCode(tt.prefix, tt.sequence)
			assert.Equal(t, tt.expected, code.String())
		})
	}
}

func TestParseCode(t *testing.T) {
	code, err := ParseCode(" shf-dr12 ")
	require.NoError(t, err)
	assert.Equal(t, "SHF-DR12", code.String())
	assert.Equal(t, "DR", code.Prefix())
	assert.Equal(t, 12, code.Sequence())
	assert.False(t, code.IsKit())

	kit, err := ParseCode("SHF-KIT3")
	require.NoError(t, err)
	assert.True(t, kit.IsKit())

	padded, err := ParseCode("SHF-DR007")
	require.NoError(t, err)
	assert.Equal(t, "SHF-DR7", padded.String())
	assert.Equal(t, 7, padded.Sequence())

	for _, bad := range []string{"", "SHF-", "ABC-DR1", "SHF-DRILL1", "SHF-DR1x", "SHF-DR0", "SHF-99999999999999999999"} {
		_, err := ParseCode(bad)
		assert.Error(t, err, bad)
	}
}

func TestNewStatus(t *testing.T) {
	status, err := NewStatus("in_custody")
	require.NoError(t, err)
	assert.Equal(t, StatusInCustody, status)

	_, err = NewStatus(StatusAll)
	assert.Error(t, err)

	_, err = NewStatus("broken")
	assert.Error(t, err)
}

func TestIsValidPrefix(t *testing.T) {
	assert.True(t, IsValidPrefix(""))
	assert.True(t, IsValidPrefix("DR"))
	assert.False(t, IsValidPrefix("KIT"))
	assert.False(t, IsValidPrefix("dr"))
	assert.False(t, IsValidPrefix("DRIL"))
	assert.False(t, IsValidPrefix("D1"))
}
