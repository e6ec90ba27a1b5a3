// Package transport implements the two socket-based pipeline edges
// (SocketReceiver, SocketSender) and the in-process LocalLoopback stage,
// grounded directly on original_source/connections/{socket_receiver,
// socket_sender,local_audio_streamer}.py.
package transport

import (
	"context"
	"io"
	"net"

	"github.com/sirupsen/logrus"

	"github.com/lokutor-ai/voicepipe/internal/stage"
	"github.com/lokutor-ai/voicepipe/internal/types"
)

// SocketReceiver is the transport ingress stage: it has no input queue (it
// is the head of the chain). It binds, accepts exactly one client, and
// loops reading fixed-size Frames until the client disconnects or the
// stop flag is observed.
type SocketReceiver struct {
	Host      string
	Port      string
	ChunkSize int
	Out       stage.Queue[stage.Item[types.Frame]]

	listener net.Listener
	conn     net.Conn
}

// Run implements supervisor.Runnable. It binds and listens, then blocks
// accepting and servicing the single client connection; it returns only
// after binding fails, Accept is aborted, or that connection ends.
func (r *SocketReceiver) Run(ctx context.Context) error {
	log := logrus.WithField("stage", "socket_receiver")

	lc := net.ListenConfig{Control: setReuseAddr}
	ln, err := lc.Listen(ctx, "tcp", net.JoinHostPort(r.Host, r.Port))
	if err != nil {
		log.WithError(err).Error("bind failed")
		r.Out.Put(stage.Shutdown[types.Frame]())
		return err
	}
	r.listener = ln
	log.WithField("addr", ln.Addr().String()).Info("listening")

	// Closing the listener/conn from the stop-watcher goroutine is how we
	// unblock a pending Accept/Read when the stop flag is set out of
	// band (e.g. an external interrupt), since a plain context cannot
	// interrupt a blocking syscall by itself.
	stopWatch := make(chan struct{})
	defer close(stopWatch)
	go func() {
		select {
		case <-ctx.Done():
			r.closeAll()
		case <-stopWatch:
		}
	}()

	conn, err := ln.Accept()
	if err != nil {
		log.WithError(err).Info("accept aborted")
		r.Out.Put(stage.Shutdown[types.Frame]())
		return nil
	}
	r.conn = conn
	log.Info("client connected")

	for {
		buf, err := readFull(conn, r.ChunkSize)
		if err != nil {
			if err != io.EOF {
				log.WithError(err).Debug("read ended")
			}
			break
		}
		r.Out.Put(stage.Payload[types.Frame](buf))
	}

	r.Out.Put(stage.Shutdown[types.Frame]())
	r.closeAll()
	log.WithError(ErrTransportClosed).Info("connection closed")
	return nil
}

func (r *SocketReceiver) closeAll() {
	if r.conn != nil {
		_ = r.conn.Close()
	}
	if r.listener != nil {
		_ = r.listener.Close()
	}
}

// readFull is the "read-until-full" primitive from spec.md §4.3: it
// repeatedly reads into the remaining buffer suffix; if an underlying
// read returns zero bytes the connection is considered closed. A short
// read partway through the chunk is not possible to observe downstream —
// the whole chunk_size or nothing is ever enqueued.
func readFull(conn net.Conn, n int) ([]byte, error) {
	buf := make([]byte, n)
	_, err := io.ReadFull(conn, buf)
	if err != nil {
		return nil, io.EOF
	}
	return buf, nil
}
