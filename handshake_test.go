package mcvhost

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func handshakePacket(protocol int32, host string, port uint16, next int32) []byte {
	payload := appendVarInt(nil, protocol)
	payload = appendString(payload, host)
	payload = binary.BigEndian.AppendUint16(payload, port)
	payload = appendVarInt(payload, next)

	buf := bytes.NewBuffer(nil)
	writePacket(buf, packetHandshake, payload)
	return buf.Bytes()
}

func TestVarInt(t *testing.T) {
	tests := []struct {
		value int32
		want  []byte
	}{
		{value: 0, want: []byte{0x00}},
		{value: 127, want: []byte{0x7f}},
		{value: 128, want: []byte{0x80, 0x01}},
		{value: 25565, want: []byte{0xdd, 0xc7, 0x01}},
		{value: -1, want: []byte{0xff, 0xff, 0xff, 0xff, 0x0f}},
	}
	for _, tt := range tests {
		got := appendVarInt(nil, tt.value)
		assert.Equal(t, tt.want, got)

		v, err := readVarInt(bytes.NewReader(got))
		require.NoError(t, err)
		assert.Equal(t, tt.value, v)
	}

	_, err := readVarInt(bytes.NewReader([]byte{0xff, 0xff, 0xff, 0xff, 0xff, 0x01}))
	assert.ErrorIs(t, err, errVarIntTooBig)
}

func TestReadHandshake(t *testing.T) {
	packet := handshakePacket(765, "Play.Example.com.\x00FML\x00", 25565, stateLogin)
	hs, err := readHandshake(bufio.NewReader(bytes.NewReader(packet)))
	require.NoError(t, err)
	assert.Equal(t, &handshake{
		Protocol:  765,
		Host:      "Play.Example.com",
		Port:      25565,
		NextState: stateLogin,
	}, hs)
}

func TestReadHandshakeRejectsGarbage(t *testing.T) {
	tests := map[string][]byte{
		"legacy ping":  {0xfe, 0x01},
		"wrong packet": {0x02, 0x05, 0x00},
		"short":        {0x10, 0x00, 0x01},
		"empty":        {},
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := readHandshake(bufio.NewReader(bytes.NewReader(data)))
			assert.Error(t, err)
		})
	}
}

func TestAnswerStatus(t *testing.T) {
	in := bytes.NewBuffer(nil)
	writePacket(in, packetStatusRequest, nil)
	writePacket(in, packetPing, []byte{1, 2, 3, 4, 5, 6, 7, 8})

	out := bytes.NewBuffer(nil)
	hs := &handshake{Protocol: 765, Host: "play.example.com", NextState: stateStatus}
	static := &StaticPing{Motd: DefaultMotd, Version: "1.20.4", NumPlayers: 3, MaxPlayers: 20}
	require.NoError(t, answerStatus(bufio.NewReader(in), out, hs, static))

	r := bufio.NewReader(out)
	id, body, err := readPacket(r)
	require.NoError(t, err)
	assert.Equal(t, int32(packetStatusRequest), id)
	n, err := readVarInt(body)
	require.NoError(t, err)
	data := make([]byte, n)
	_, err = io.ReadFull(body, data)
	require.NoError(t, err)

	var resp statusResponse
	require.NoError(t, json.Unmarshal(data, &resp))
	assert.Equal(t, newStatusResponse(static, 765), resp)
	assert.Equal(t, "1.20.4", resp.Version.Name)
	assert.Equal(t, int32(765), resp.Version.Protocol)
	assert.Equal(t, 3, resp.Players.Online)
	assert.Equal(t, 20, resp.Players.Max)
	assert.Equal(t, DefaultMotd, resp.Description.Text)

	id, body, err = readPacket(r)
	require.NoError(t, err)
	assert.Equal(t, int32(packetPing), id)
	payload, _ := io.ReadAll(body)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, payload)
}

func TestAnswerStatusWithoutPing(t *testing.T) {
	in := bytes.NewBuffer(nil)
	writePacket(in, packetStatusRequest, nil)

	out := bytes.NewBuffer(nil)
	err := answerStatus(bufio.NewReader(in), out, &handshake{}, &StaticPing{Motd: DefaultMotd})
	require.NoError(t, err)
	assert.NotZero(t, out.Len())
}
