package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/lokutor-ai/voicepipe/internal/stage"
	"github.com/lokutor-ai/voicepipe/internal/types"
)

// SocketSender is the transport egress stage: it has no output queue (it
// is the tail of the chain). It binds, accepts exactly one client, and
// writes every Frame it is handed until a sentinel is taken or the write
// fails because the peer went away.
type SocketSender struct {
	Host string
	Port string
	In   stage.Queue[stage.Item[types.Frame]]

	listener net.Listener
	conn     net.Conn
}

// Run implements supervisor.Runnable.
func (s *SocketSender) Run(ctx context.Context) error {
	log := logrus.WithField("stage", "socket_sender")

	lc := net.ListenConfig{Control: setReuseAddr}
	ln, err := lc.Listen(ctx, "tcp", net.JoinHostPort(s.Host, s.Port))
	if err != nil {
		log.WithError(err).Error("bind failed")
		return err
	}
	s.listener = ln
	log.WithField("addr", ln.Addr().String()).Info("listening")

	stopWatch := make(chan struct{})
	defer close(stopWatch)
	go func() {
		select {
		case <-ctx.Done():
			s.closeAll()
		case <-stopWatch:
		}
	}()

	conn, err := ln.Accept()
	if err != nil {
		log.WithError(err).Info("accept aborted")
		return nil
	}
	s.conn = conn
	log.Info("client connected")

	for {
		item, ok := s.In.Take()
		if !ok || item.Sentinel {
			break
		}
		if err := writeAll(conn, item.Value); err != nil {
			if isBrokenConn(err) {
				log.Debug("peer closed connection")
				break
			}
			log.WithError(err).Warn("write failed")
			break
		}
	}

	s.closeAll()
	log.WithError(ErrTransportClosed).Info("connection closed")
	return nil
}

func (s *SocketSender) closeAll() {
	if s.conn != nil {
		_ = s.conn.Close()
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
}

// writeAll is the "write-all" primitive from spec.md §4.4.
func writeAll(conn net.Conn, data []byte) error {
	_, err := conn.Write(data)
	return err
}

// isBrokenConn reports whether err represents a broken-pipe or
// connection-reset condition, which spec.md §4.4 treats as a silent exit
// rather than a logged failure.
func isBrokenConn(err error) bool {
	return errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, io.ErrClosedPipe)
}
