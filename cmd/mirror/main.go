// Command mirror is the client-side driver described in spec.md §4.7:
// it connects a microphone/speaker pair to the pipeline's ingress and
// egress TCP sockets via two cooperating pump goroutines, exactly as
// original_source/listen_and_play.py does with sounddevice, ported to a
// malgo duplex device.
package main

import (
	"context"
	"flag"
	"net"
	"os/signal"
	"syscall"

	"github.com/gen2brain/malgo"
	"github.com/sirupsen/logrus"

	"github.com/lokutor-ai/voicepipe/internal/echo"
	"github.com/lokutor-ai/voicepipe/internal/pcm"
	"github.com/lokutor-ai/voicepipe/internal/queue"
)

const sampleRate = 16000

func main() {
	host := flag.String("host", "127.0.0.1", "pipeline host")
	sendPort := flag.String("send-port", "12345", "ingress port (mirror writes here)")
	recvPort := flag.String("recv-port", "12346", "egress port (mirror reads from here)")
	chunkSize := flag.Int("chunk-size", 1024, "frame size in bytes")
	suppressEcho := flag.Bool("suppress-echo", true, "drop microphone input that correlates with recent playback")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sendConn, err := net.Dial("tcp", net.JoinHostPort(*host, *sendPort))
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to ingress socket")
	}
	defer sendConn.Close()

	recvConn, err := net.Dial("tcp", net.JoinHostPort(*host, *recvPort))
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to egress socket")
	}
	defer recvConn.Close()

	logrus.WithFields(logrus.Fields{
		"send": sendConn.RemoteAddr(),
		"recv": recvConn.RemoteAddr(),
	}).Info("connected to pipeline")

	sendQueue := queue.NewUnbounded[[]byte]()
	recvQueue := queue.NewUnbounded[[]byte]()

	suppressor := echo.NewSuppressor(sampleRate, 2.0)
	suppressor.SetEnabled(*suppressEcho)

	stopCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Sender pump: blocking-take from the send queue, sendall to the
	// ingress socket.
	go func() {
		for {
			select {
			case <-stopCtx.Done():
				return
			default:
			}
			data, ok := sendQueue.Take()
			if !ok {
				return
			}
			if _, err := sendConn.Write(data); err != nil {
				logrus.WithError(err).Warn("send pump: write failed")
				cancel()
				return
			}
		}
	}()

	// Receiver pump: read exactly 2*chunk_size bytes (16-bit samples)
	// from the egress socket and push to the receive queue.
	go func() {
		frameBytes := *chunkSize * 2
		for {
			select {
			case <-stopCtx.Done():
				return
			default:
			}
			buf := make([]byte, frameBytes)
			if _, err := readFull(recvConn, buf); err != nil {
				logrus.WithError(err).Info("receive pump: connection closed")
				cancel()
				return
			}
			recvQueue.Put(buf)
		}
	}()

	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		logrus.WithError(err).Fatal("failed to init audio context")
	}
	defer mctx.Uninit()

	var playback []byte

	onSamples := func(pOutput, pInput []byte, frameCount uint32) {
		if pInput != nil {
			chunk := append([]byte(nil), pInput...)
			if *suppressEcho && suppressor.IsEcho(pcm.BytesToFloat32(chunk)) {
				chunk = make([]byte, len(chunk))
			}
			sendQueue.Put(chunk)
		}
		if pOutput != nil {
			// Drain from the receive queue without ever blocking the
			// audio callback: a shortfall (queue momentarily empty) is
			// zero-filled immediately rather than stalling playback,
			// mirroring listen_and_play.py's cb_recv / recv_q.get_nowait().
			filled := 0
			for filled < len(pOutput) {
				if len(playback) == 0 {
					data, ok := recvQueue.TryTake()
					if !ok {
						break
					}
					playback = data
				}
				n := copy(pOutput[filled:], playback)
				playback = playback[n:]
				filled += n
			}
			for i := filled; i < len(pOutput); i++ {
				pOutput[i] = 0
			}
			if *suppressEcho && filled > 0 {
				suppressor.RecordPlayed(pcm.BytesToFloat32(pOutput[:filled]))
			}
		}
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Duplex)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = 1
	deviceConfig.Playback.Format = malgo.FormatS16
	deviceConfig.Playback.Channels = 1
	deviceConfig.SampleRate = sampleRate

	device, err := malgo.InitDevice(mctx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: onSamples,
	})
	if err != nil {
		logrus.WithError(err).Fatal("failed to init audio device")
	}
	defer device.Uninit()

	if err := device.Start(); err != nil {
		logrus.WithError(err).Fatal("failed to start audio device")
	}

	logrus.Info("mirror streaming, press Ctrl+C to stop")
	<-stopCtx.Done()
	logrus.Info("shutting down")
}

// readFull repeats Read until buf is full or an error/EOF occurs,
// mirroring the read-until-full primitive transport.SocketReceiver
// uses on the server side.
func readFull(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
		if n == 0 {
			return total, net.ErrClosed
		}
	}
	return total, nil
}
