package mcvhost

import (
	"bufio"
	"bytes"
	"io"
	"net"
)

// handshakeWithConn reads the handshake off conn. The returned reader
// continues after the handshake, the returned buffer holds every byte
// consumed from conn so far.
func handshakeWithConn(conn net.Conn) (*handshake, *bufio.Reader, *bytes.Buffer, error) {
	buf := bytes.NewBuffer(nil)
	r := bufio.NewReader(io.TeeReader(conn, buf))
	hs, err := readHandshake(r)
	if err != nil {
		return nil, nil, nil, err
	}
	return hs, r, buf, nil
}

func wrapUnreadConn(conn net.Conn, prefix []byte) net.Conn {
	if len(prefix) == 0 {
		return conn
	}
	if uc, ok := conn.(*unreadConn); ok {
		uc.Reader = wrapUnread(uc.Reader, prefix)
		return uc
	}
	return &unreadConn{
		Reader: wrapUnread(conn, prefix),
		Conn:   conn,
	}
}

// unreadConn replays a prefix before reading from Conn again.
type unreadConn struct {
	io.Reader
	net.Conn
}

func (c *unreadConn) Read(p []byte) (n int, err error) {
	return c.Reader.Read(p)
}

func wrapUnread(reader io.Reader, prefix []byte) io.Reader {
	if len(prefix) == 0 {
		return reader
	}
	if ur, ok := reader.(*unread); ok {
		ur.prefix = append(prefix, ur.prefix...)
		return reader
	}
	return &unread{
		prefix: prefix,
		reader: reader,
	}
}

type unread struct {
	prefix []byte
	reader io.Reader
}

func (u *unread) Read(p []byte) (int, error) {
	if len(u.prefix) == 0 {
		return u.reader.Read(p)
	}
	n := copy(p, u.prefix)
	u.prefix = u.prefix[n:]
	if len(u.prefix) == 0 {
		u.prefix = nil
	}
	return n, nil
}
