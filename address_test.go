package mcvhost

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAddress(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  netip.AddrPort
	}{
		{
			name:  "ip and port",
			input: "10.0.0.5:25566",
			want:  netip.MustParseAddrPort("10.0.0.5:25566"),
		},
		{
			name:  "loopback",
			input: "127.0.0.1:1",
			want:  netip.MustParseAddrPort("127.0.0.1:1"),
		},
		{
			name:  "bare port",
			input: "25565",
			want:  netip.MustParseAddrPort("0.0.0.0:25565"),
		},
		{
			name:  "trailing space",
			input: "10.0.0.5:25566 ",
			want:  netip.MustParseAddrPort("10.0.0.5:25566"),
		},
		{
			name:  "bare port trailing space",
			input: "25565  ",
			want:  netip.MustParseAddrPort("0.0.0.0:25565"),
		},
		{
			name:  "highest port",
			input: "65535",
			want:  netip.MustParseAddrPort("0.0.0.0:65535"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAddress(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAddressInvalid(t *testing.T) {
	tests := []string{
		"",
		"localhost:25565",
		"10.0.0.x:25565",
		"10.0.0.5:",
		"10.0.0.5",
		":25565",
		"10.0.0.5:25565abc",
		"25565abc",
		"25565 abc",
		" 25565",
		"10.0.0:25565",
		"10.0.0.5:-1",
		"65536",
		"10.0.0.5:99999",
		"::1:25565",
	}
	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			_, err := ParseAddress(input)
			assert.ErrorIs(t, err, ErrInvalidAddress)
		})
	}
}

func TestVhostFillInAddressKeepsVhostOnFailure(t *testing.T) {
	v := NewVhost("play.example.com")
	require.NoError(t, v.FillInAddress("10.0.0.5:25566"))

	err := v.FillInAddress("nope")
	require.ErrorIs(t, err, ErrInvalidAddress)
	assert.Equal(t, netip.MustParseAddrPort("10.0.0.5:25566"), v.InternalAddress)
	assert.Equal(t, "play.example.com", v.Hostname)
}
