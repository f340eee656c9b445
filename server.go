package mcvhost

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	handshakeTimeout = 10 * time.Second
	maxAcceptDelay   = time.Second
)

// Server runs the listeners handed to it by Dispatch.
type Server struct {
	logger *slog.Logger
	group  *errgroup.Group
	ctx    context.Context

	mu      sync.Mutex
	closers []io.Closer
}

func NewServer(ctx context.Context, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	group, ctx := errgroup.WithContext(ctx)
	return &Server{
		logger: logger,
		group:  group,
		ctx:    ctx,
	}
}

// InitListener binds l and serves it in the background until the server
// context is done.
func (s *Server) InitListener(ctx context.Context, l *Listener) error {
	logger, closer, err := newListenerLogger(l, s.logger)
	if err != nil {
		return err
	}
	var lc net.ListenConfig
	svc, err := lc.Listen(ctx, "tcp", l.Address.String())
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return err
	}

	s.mu.Lock()
	s.closers = append(s.closers, svc)
	if closer != nil {
		s.closers = append(s.closers, closer)
	}
	s.mu.Unlock()

	logger.Info("listening", slog.Int("vhosts", len(l.Vhosts)))
	s.group.Go(func() error {
		return s.serve(l, svc, logger)
	})
	return nil
}

// Wait blocks until every listener stopped and releases their resources.
func (s *Server) Wait() error {
	go func() {
		<-s.ctx.Done()
		s.close()
	}()
	err := s.group.Wait()
	s.close()
	return err
}

func (s *Server) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.closers {
		c.Close()
	}
	s.closers = nil
}

func (s *Server) serve(l *Listener, svc net.Listener, logger *slog.Logger) error {
	var delay time.Duration
	for {
		conn, err := svc.Accept()
		if err != nil {
			if s.ctx.Err() != nil || isClosedConnError(err) {
				return nil
			}
			if delay == 0 {
				delay = 5 * time.Millisecond
			} else {
				delay *= 2
			}
			if delay > maxAcceptDelay {
				delay = maxAcceptDelay
			}
			logger.Warn("accept failed, retrying", slog.Any("err", err), slog.Duration("delay", delay))
			select {
			case <-time.After(delay):
			case <-s.ctx.Done():
				return nil
			}
			continue
		}
		delay = 0
		ConnectionsTotal.WithLabelValues(l.String()).Inc()
		go func() {
			err := s.handle(l, conn, logger)
			if err != nil && !isClosedConnError(err) && err != io.EOF {
				logger.Debug("connection closed", slog.String("remote", conn.RemoteAddr().String()), slog.Any("err", err))
			}
		}()
	}
}

func (s *Server) handle(l *Listener, conn net.Conn, logger *slog.Logger) error {
	conn.SetReadDeadline(time.Now().Add(handshakeTimeout))
	hs, r, buf, err := handshakeWithConn(conn)
	if err != nil {
		conn.Close()
		return err
	}

	if static := l.Static(); static != nil && hs.NextState == stateStatus {
		defer conn.Close()
		StaticPingsTotal.WithLabelValues(l.String()).Inc()
		return answerStatus(r, conn, hs, static)
	}

	vhost := l.Lookup(hs.Host)
	if vhost == nil {
		conn.Close()
		UnknownVhostTotal.WithLabelValues(l.String()).Inc()
		logger.Info("unknown vhost", slog.String("host", hs.Host), slog.String("remote", conn.RemoteAddr().String()))
		return nil
	}
	conn.SetReadDeadline(time.Time{})

	remote, err := dialVhost(s.ctx, vhost)
	if err != nil {
		conn.Close()
		logger.Warn("dial backend", slog.String("vhost", vhost.Hostname), slog.Any("err", err))
		return err
	}
	RoutedTotal.WithLabelValues(l.String(), vhost.Hostname).Inc()
	logger.Debug("routed", slog.String("vhost", vhost.Hostname), slog.String("remote", conn.RemoteAddr().String()))

	return s.tunnel(s.ctx, wrapUnreadConn(conn, buf.Bytes()), remote)
}

// Lookup returns the vhost serving host, ignoring case.
func (l *Listener) Lookup(host string) *Vhost {
	for _, v := range l.Vhosts {
		if strings.EqualFold(v.Hostname, host) {
			return v
		}
	}
	return nil
}

func dialVhost(ctx context.Context, v *Vhost) (net.Conn, error) {
	if !v.InternalAddress.IsValid() {
		return nil, fmt.Errorf("vhost %q has no internaladdress", v.Hostname)
	}
	var d net.Dialer
	return d.DialContext(ctx, "tcp", v.InternalAddress.String())
}

func (s *Server) tunnel(ctx context.Context, c1, c2 net.Conn) error {
	buf1 := bytesPool.Get().([]byte)
	buf2 := bytesPool.Get().([]byte)
	defer func() {
		bytesPool.Put(buf1)
		bytesPool.Put(buf2)
	}()
	return tunnel(ctx, c1, c2, buf1, buf2)
}

func tunnel(ctx context.Context, c1, c2 io.ReadWriteCloser, buf1, buf2 []byte) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errs := make(chan error, 2)
	go func() {
		_, err := io.CopyBuffer(c1, c2, buf1)
		errs <- err
		cancel()
	}()
	go func() {
		_, err := io.CopyBuffer(c2, c1, buf2)
		errs <- err
		cancel()
	}()

	<-ctx.Done()
	c1.Close()
	c2.Close()
	err := <-errs
	<-errs
	if isClosedConnError(err) {
		return nil
	}
	return err
}

func isClosedConnError(err error) bool {
	return err != nil && errors.Is(err, net.ErrClosed)
}

var bytesPool = &sync.Pool{
	New: func() interface{} {
		return make([]byte, 32*1024)
	},
}
