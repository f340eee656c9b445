package mcvhost

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	maxPacketLength = 2048

	stateStatus = 1
	stateLogin  = 2

	packetHandshake     = 0x00
	packetStatusRequest = 0x00
	packetPing          = 0x01
)

var errVarIntTooBig = errors.New("varint too big")

type handshake struct {
	Protocol  int32
	Host      string
	Port      uint16
	NextState int32
}

func readVarInt(r io.ByteReader) (int32, error) {
	var v uint32
	for i := 0; ; i++ {
		if i == 5 {
			return 0, errVarIntTooBig
		}
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		v |= uint32(b&0x7f) << (7 * i)
		if b&0x80 == 0 {
			return int32(v), nil
		}
	}
}

func appendVarInt(b []byte, v int32) []byte {
	u := uint32(v)
	for u >= 0x80 {
		b = append(b, byte(u)|0x80)
		u >>= 7
	}
	return append(b, byte(u))
}

func appendString(b []byte, s string) []byte {
	b = appendVarInt(b, int32(len(s)))
	return append(b, s...)
}

// readPacket returns the id and payload of the next length prefixed packet.
func readPacket(r *bufio.Reader) (int32, *bytes.Reader, error) {
	length, err := readVarInt(r)
	if err != nil {
		return 0, nil, err
	}
	if length <= 0 || length > maxPacketLength {
		return 0, nil, fmt.Errorf("bad packet length %d", length)
	}
	data := make([]byte, length)
	_, err = io.ReadFull(r, data)
	if err != nil {
		return 0, nil, err
	}
	body := bytes.NewReader(data)
	id, err := readVarInt(body)
	if err != nil {
		return 0, nil, err
	}
	return id, body, nil
}

func writePacket(w io.Writer, id int32, payload []byte) error {
	body := appendVarInt(nil, id)
	body = append(body, payload...)
	packet := appendVarInt(make([]byte, 0, len(body)+5), int32(len(body)))
	packet = append(packet, body...)
	_, err := w.Write(packet)
	return err
}

func readHandshake(r *bufio.Reader) (*handshake, error) {
	id, body, err := readPacket(r)
	if err != nil {
		return nil, err
	}
	if id != packetHandshake {
		return nil, fmt.Errorf("unexpected packet 0x%02x before handshake", id)
	}

	hs := &handshake{}
	hs.Protocol, err = readVarInt(body)
	if err != nil {
		return nil, err
	}
	n, err := readVarInt(body)
	if err != nil {
		return nil, err
	}
	if n < 0 || int(n) > body.Len() {
		return nil, fmt.Errorf("bad server address length %d", n)
	}
	host := make([]byte, n)
	_, err = io.ReadFull(body, host)
	if err != nil {
		return nil, err
	}
	err = binary.Read(body, binary.BigEndian, &hs.Port)
	if err != nil {
		return nil, err
	}
	hs.NextState, err = readVarInt(body)
	if err != nil {
		return nil, err
	}
	hs.Host = normalizeHost(string(host))
	return hs, nil
}

// normalizeHost drops anything mod loaders append after a NUL and the
// trailing dot of fully qualified names.
func normalizeHost(host string) string {
	if i := strings.IndexByte(host, 0); i >= 0 {
		host = host[:i]
	}
	return strings.TrimSuffix(host, ".")
}

type statusResponse struct {
	Version struct {
		Name     string `json:"name"`
		Protocol int32  `json:"protocol"`
	} `json:"version"`
	Players struct {
		Max    int `json:"max"`
		Online int `json:"online"`
	} `json:"players"`
	Description struct {
		Text string `json:"text"`
	} `json:"description"`
}

func newStatusResponse(s *StaticPing, protocol int32) statusResponse {
	var resp statusResponse
	resp.Version.Name = s.Version
	resp.Version.Protocol = protocol
	resp.Players.Max = s.MaxPlayers
	resp.Players.Online = s.NumPlayers
	resp.Description.Text = s.Motd
	return resp
}

// answerStatus serves the status exchange that follows a status handshake:
// one status request answered with s, then an echoed ping.
func answerStatus(r *bufio.Reader, w io.Writer, hs *handshake, s *StaticPing) error {
	id, _, err := readPacket(r)
	if err != nil {
		return err
	}
	if id != packetStatusRequest {
		return fmt.Errorf("unexpected packet 0x%02x, want status request", id)
	}
	data, err := json.Marshal(newStatusResponse(s, hs.Protocol))
	if err != nil {
		return err
	}
	err = writePacket(w, packetStatusRequest, appendString(nil, string(data)))
	if err != nil {
		return err
	}

	id, body, err := readPacket(r)
	if err != nil {
		if err == io.EOF {
			return nil
		}
		return err
	}
	if id != packetPing {
		return fmt.Errorf("unexpected packet 0x%02x, want ping", id)
	}
	payload, _ := io.ReadAll(body)
	return writePacket(w, packetPing, payload)
}
