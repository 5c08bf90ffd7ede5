package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCIDRSubnet(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		prefix   string
		newbits  int
		netnum   int
		expected string
		wantErr  bool
	}{
		{"first /27 of /24", "10.0.10.0/24", 3, 0, "10.0.10.0/27", false},
		{"last /27 of /24", "10.0.10.0/24", 3, 7, "10.0.10.224/27", false},
		{"/24 inside /16", "10.0.0.0/16", 8, 20, "10.0.20.0/24", false},
		{"netnum too large", "10.0.10.0/24", 3, 8, "", true},
		{"negative netnum", "10.0.10.0/24", 3, -1, "", true},
		{"extension too large", "10.0.10.0/24", 9, 0, "", true},
		{"ipv6 rejected", "2001:db8::/32", 8, 0, "", true},
		{"garbage", "not-a-cidr", 1, 0, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := CIDRSubnet(tt.prefix, tt.newbits, tt.netnum)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSplitCIDR(t *testing.T) {
	t.Parallel()

	blocks, err := SplitCIDR("10.0.20.0/24", 6)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"10.0.20.0/27", "10.0.20.32/27", "10.0.20.64/27",
		"10.0.20.96/27", "10.0.20.128/27", "10.0.20.160/27",
	}, blocks)

	blocks, err = SplitCIDR("10.0.0.0/16", 4)
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.0/18", "10.0.64.0/18", "10.0.128.0/18", "10.0.192.0/18"}, blocks)

	_, err = SplitCIDR("10.0.0.0/16", 0)
	assert.Error(t, err)

	_, err = SplitCIDR("10.0.0.0/31", 4)
	assert.Error(t, err)
}

func TestOverlaps(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		a, b    string
		overlap bool
	}{
		{"disjoint siblings", "10.0.10.0/24", "10.0.20.0/24", false},
		{"identical", "10.0.10.0/24", "10.0.10.0/24", true},
		{"a contains b", "10.0.0.0/16", "10.0.20.0/24", true},
		{"b contains a", "10.0.20.0/24", "10.0.0.0/16", true},
		{"adjacent", "10.0.10.0/25", "10.0.10.128/25", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Overlaps(tt.a, tt.b)
			require.NoError(t, err)
			assert.Equal(t, tt.overlap, got)
		})
	}
}

func TestCheckNoOverlap(t *testing.T) {
	t.Parallel()

	assert.NoError(t, CheckNoOverlap("10.0.10.0/24", "10.0.20.0/24"))

	err := CheckNoOverlap("10.0.0.0/16", "10.0.20.0/24")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCIDROverlap)

	err = CheckNoOverlap("bogus", "10.0.20.0/24")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCIDROverlap)
}
