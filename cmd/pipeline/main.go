// Command pipeline is the stage-based speech-to-speech relay's main
// process entry point: it wires transport ingress, VAD segmenter,
// transcriber, responder, synthesizer, and transport egress into one
// linear chain under a supervisor, exactly as spec.md §2 describes.
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"os/signal"
	"syscall"

	"github.com/gen2brain/malgo"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/lokutor-ai/voicepipe/internal/config"
	"github.com/lokutor-ai/voicepipe/internal/queue"
	"github.com/lokutor-ai/voicepipe/internal/stage"
	"github.com/lokutor-ai/voicepipe/internal/stages"
	"github.com/lokutor-ai/voicepipe/internal/supervisor"
	"github.com/lokutor-ai/voicepipe/internal/transport"
	"github.com/lokutor-ai/voicepipe/internal/types"
	"github.com/lokutor-ai/voicepipe/internal/vad"
	"github.com/lokutor-ai/voicepipe/pkg/providers"
	"github.com/lokutor-ai/voicepipe/pkg/providers/llm"
	"github.com/lokutor-ai/voicepipe/pkg/providers/stt"
	"github.com/lokutor-ai/voicepipe/pkg/providers/tts"
)

func main() {
	configPath := flag.String("config", "", "optional path to a JSON/YAML config file")
	loopback := flag.Bool("loopback", false, "collapse ingress/egress into an in-process LocalLoopback stage")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file found, using system environment variables")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	level, err := logrus.ParseLevel(cfg.Module.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	sttProvider, err := buildSTT(cfg.STT)
	if err != nil {
		logrus.WithError(err).Fatal("failed to construct STT provider")
	}
	llmProvider, err := buildLLM(cfg.LLM)
	if err != nil {
		logrus.WithError(err).Fatal("failed to construct LLM provider")
	}
	ttsProvider, err := buildTTS(cfg.TTS)
	if err != nil {
		logrus.WithError(err).Fatal("failed to construct TTS provider")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sup := supervisor.New(ctx)

	frameQueueIn := queue.NewUnbounded[stage.Item[types.Frame]]()
	segmentQueue := queue.NewUnbounded[stage.Item[types.Segment]]()
	transcriptQueue := queue.NewUnbounded[stage.Item[types.Transcript]]()
	sentenceQueue := queue.NewUnbounded[stage.Item[types.Sentence]]()
	frameQueueOut := queue.NewUnbounded[stage.Item[types.Frame]]()

	maxSpeechMS := cfg.VAD.MaxSpeechMS
	if maxSpeechMS <= 0 {
		maxSpeechMS = math.Inf(1)
	}

	segmenter := vad.NewSegmenter(vad.NewRMSModel(), vad.SegmenterConfig{
		Iterator: vad.Config{
			Threshold:    cfg.VAD.Threshold,
			SampleRate:   cfg.VAD.SampleRate,
			MinSilenceMS: cfg.VAD.MinSilenceMS,
			SpeechPadMS:  cfg.VAD.SpeechPadMS,
		},
		MinSpeechMS: cfg.VAD.MinSpeechMS,
		MaxSpeechMS: maxSpeechMS,
	})

	history := stages.NewHistory(20)
	history.SetSystemPrompt("You are a helpful and concise voice assistant. Use short sentences suitable for speech.")

	sup.Add(&stage.Runner[types.Frame, types.Segment]{
		Name: "vad_segmenter",
		Proc: segmenter,
		In:   frameQueueIn,
		Out:  segmentQueue,
	})
	sup.Add(&stage.Runner[types.Segment, types.Transcript]{
		Name: "transcriber",
		Proc: &stages.Transcriber{STT: sttProvider, Language: types.Language(cfg.STT.Language)},
		In:   segmentQueue,
		Out:  transcriptQueue,
	})
	sup.Add(&stage.Runner[types.Transcript, types.Sentence]{
		Name: "responder",
		Proc: &stages.Responder{LLM: llmProvider, History: history},
		In:   transcriptQueue,
		Out:  sentenceQueue,
	})
	sup.Add(&stage.Runner[types.Sentence, types.Frame]{
		Name: "synthesizer",
		Proc: &stages.Synthesizer{
			TTS:       ttsProvider,
			Voice:     types.Voice(cfg.TTS.Voice),
			Language:  types.Language(cfg.TTS.Language),
			ChunkSize: cfg.SocketReceiver.ChunkSize,
		},
		In:  sentenceQueue,
		Out: frameQueueOut,
	})

	if *loopback {
		// --loopback stands a local malgo duplex device in for the two
		// TCP peers SocketReceiver/SocketSender would otherwise talk to:
		// a captured-frame queue and a playback-frame queue, each
		// connected to the pipeline's own head/tail through a
		// LocalLoopback stage, the same "in-process producer/consumer"
		// shape cmd/mirror uses for the remote microphone/speaker pair.
		micQueue := queue.NewUnbounded[stage.Item[types.Frame]]()
		spkQueue := queue.NewUnbounded[stage.Item[types.Frame]]()

		sup.Add(&stage.Runner[types.Frame, types.Frame]{
			Name: "local_loopback_in",
			Proc: &transport.LocalLoopback[types.Frame]{},
			In:   micQueue,
			Out:  frameQueueIn,
		})
		sup.Add(&stage.Runner[types.Frame, types.Frame]{
			Name: "local_loopback_out",
			Proc: &transport.LocalLoopback[types.Frame]{},
			In:   frameQueueOut,
			Out:  spkQueue,
		})
		sup.Add(&audioDevice{
			SampleRate: cfg.VAD.SampleRate,
			ChunkSize:  cfg.SocketReceiver.ChunkSize,
			In:         micQueue,
			Out:        spkQueue,
		})
	} else {
		sup.Add(&transport.SocketReceiver{
			Host:      cfg.SocketReceiver.Host,
			Port:      cfg.SocketReceiver.Port,
			ChunkSize: cfg.SocketReceiver.ChunkSize,
			Out:       frameQueueIn,
		})
		sup.Add(&transport.SocketSender{
			Host: cfg.SocketSender.Host,
			Port: cfg.SocketSender.Port,
			In:   frameQueueOut,
		})
	}

	logrus.WithFields(logrus.Fields{
		"stt": sttProvider.Name(),
		"llm": llmProvider.Name(),
		"tts": ttsProvider.Name(),
	}).Info("pipeline starting")

	sup.Start()
	<-ctx.Done()
	logrus.Info("shutdown signal received")
	sup.Stop()
	errs := sup.Join()
	for _, e := range errs {
		logrus.WithError(e).Error("stage exited with error")
	}
	if len(errs) > 0 {
		os.Exit(1)
	}
}

// audioDevice is the in-process microphone/speaker pair that backs
// --loopback. It plays the same role cmd/mirror's malgo device plays for a
// remote client: a real-time capture callback feeds In with fixed-size
// Frames, and a real-time playback callback drains Out, zero-filling any
// shortfall rather than blocking the audio thread.
type audioDevice struct {
	SampleRate int
	ChunkSize  int
	In         *queue.Unbounded[stage.Item[types.Frame]]
	Out        *queue.Unbounded[stage.Item[types.Frame]]
}

// Run implements supervisor.Runnable.
func (a *audioDevice) Run(ctx context.Context) error {
	log := logrus.WithField("stage", "audio_device")

	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		log.WithError(err).Error("failed to init audio context")
		a.In.Put(stage.Shutdown[types.Frame]())
		return err
	}
	defer mctx.Uninit()

	var captured []byte
	var playback types.Frame

	onSamples := func(pOutput, pInput []byte, frameCount uint32) {
		if pInput != nil {
			captured = append(captured, pInput...)
			for len(captured) >= a.ChunkSize {
				frame := append(types.Frame(nil), captured[:a.ChunkSize]...)
				captured = captured[a.ChunkSize:]
				a.In.Put(stage.Payload(frame))
			}
		}
		if pOutput != nil {
			// Never block the audio callback: a momentarily empty Out
			// queue is zero-filled immediately instead of parking this
			// thread in Take, mirroring cmd/mirror's playback drain.
			filled := 0
			for filled < len(pOutput) {
				if len(playback) == 0 {
					item, ok := a.Out.TryTake()
					if !ok || item.Sentinel {
						break
					}
					playback = item.Value
				}
				n := copy(pOutput[filled:], playback)
				playback = playback[n:]
				filled += n
			}
			for i := filled; i < len(pOutput); i++ {
				pOutput[i] = 0
			}
		}
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Duplex)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = 1
	deviceConfig.Playback.Format = malgo.FormatS16
	deviceConfig.Playback.Channels = 1
	deviceConfig.SampleRate = uint32(a.SampleRate)

	device, err := malgo.InitDevice(mctx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: onSamples,
	})
	if err != nil {
		log.WithError(err).Error("failed to init audio device")
		a.In.Put(stage.Shutdown[types.Frame]())
		return err
	}
	defer device.Uninit()

	if err := device.Start(); err != nil {
		log.WithError(err).Error("failed to start audio device")
		a.In.Put(stage.Shutdown[types.Frame]())
		return err
	}

	log.Info("local loopback audio device streaming")
	<-ctx.Done()
	a.In.Put(stage.Shutdown[types.Frame]())
	return nil
}

func buildSTT(c config.Collaborator) (providers.STTProvider, error) {
	switch c.Provider {
	case "openai":
		key := requireEnv(c.APIKey, "OPENAI_API_KEY")
		return stt.NewOpenAISTT(key, c.Model), nil
	case "deepgram":
		key := requireEnv(c.APIKey, "DEEPGRAM_API_KEY")
		return stt.NewDeepgramSTT(key), nil
	case "assemblyai":
		key := requireEnv(c.APIKey, "ASSEMBLYAI_API_KEY")
		return stt.NewAssemblyAISTT(key), nil
	case "groq", "":
		key := requireEnv(c.APIKey, "GROQ_API_KEY")
		return stt.NewGroqSTT(key, c.Model), nil
	default:
		return nil, fmt.Errorf("unknown stt provider %q", c.Provider)
	}
}

func buildLLM(c config.Collaborator) (providers.LLMProvider, error) {
	switch c.Provider {
	case "openai":
		key := requireEnv(c.APIKey, "OPENAI_API_KEY")
		return llm.NewOpenAILLM(key, c.Model), nil
	case "anthropic":
		key := requireEnv(c.APIKey, "ANTHROPIC_API_KEY")
		return llm.NewAnthropicLLM(key, c.Model), nil
	case "google":
		key := requireEnv(c.APIKey, "GOOGLE_API_KEY")
		return llm.NewGoogleLLM(key, c.Model), nil
	case "groq", "":
		key := requireEnv(c.APIKey, "GROQ_API_KEY")
		return llm.NewGroqLLM(key, c.Model), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", c.Provider)
	}
}

func buildTTS(c config.Collaborator) (providers.TTSProvider, error) {
	switch c.Provider {
	case "lokutor", "":
		key := requireEnv(c.APIKey, "LOKUTOR_API_KEY")
		return tts.NewLokutorTTS(key), nil
	default:
		return nil, fmt.Errorf("unknown tts provider %q", c.Provider)
	}
}

// requireEnv prefers an explicitly configured key over the environment,
// matching the teacher's own var-or-.env precedence in cmd/agent/main.go.
func requireEnv(configured, envVar string) string {
	if configured != "" {
		return configured
	}
	return os.Getenv(envVar)
}
