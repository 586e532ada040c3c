package ip

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIPsFromString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
		wantErr  bool
	}{
		{
			name:     "single IP",
			input:    "192.168.1.1",
			expected: []string{"192.168.1.1"},
		},
		{
			name:     "comma separated",
			input:    "192.168.1.1, 192.168.1.5",
			expected: []string{"192.168.1.1", "192.168.1.5"},
		},
		{
			name:     "range",
			input:    "192.168.1.10-192.168.1.12",
			expected: []string{"192.168.1.10", "192.168.1.11", "192.168.1.12"},
		},
		{
			name:     "cidr excludes network and broadcast",
			input:    "10.0.0.0/30",
			expected: []string{"10.0.0.1", "10.0.0.2"},
		},
		{
			name:     "duplicates removed",
			input:    "10.0.0.1,10.0.0.1-10.0.0.2",
			expected: []string{"10.0.0.1", "10.0.0.2"},
		},
		{
			name:     "empty input",
			input:    "  ",
			expected: []string{},
		},
		{
			name:    "invalid IP",
			input:   "not-an-ip",
			wantErr: true,
		},
		{
			name:    "invalid range bound",
			input:   "10.0.0.1-banana",
			wantErr: true,
		},
		{
			name:    "invalid cidr",
			input:   "10.0.0.0/99",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ips, err := ParseIPsFromString(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ips)
		})
	}
}

func TestExpandRange(t *testing.T) {
	ips, err := ExpandRange("10.0.0.254", "10.0.1.1")
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.254", "10.0.0.255", "10.0.1.0", "10.0.1.1"}, ips)

	_, err = ExpandRange("10.0.0.5", "10.0.0.1")
	assert.Error(t, err, "inverted range accepted")

	_, err = ExpandRange("10.0.0.1", "::1")
	assert.Error(t, err, "mixed address families accepted")
}

func TestExpandRangeIPv6(t *testing.T) {
	ips, err := ExpandRange("2001:db8::1", "2001:db8::3")
	require.NoError(t, err)
	assert.Equal(t, []string{"2001:db8::1", "2001:db8::2", "2001:db8::3"}, ips)
}

func TestExpandCIDRSmallBlocks(t *testing.T) {
	// /31 and /32 have no network/broadcast split to exclude.
	ips, err := ExpandCIDR("10.0.0.4/31")
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.4", "10.0.0.5"}, ips)

	ips, err = ExpandCIDR("10.0.0.9/32")
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.9"}, ips)
}
