// Package config loads the pipeline's configuration from environment
// variables (prefixed PIPELINE_), an optional JSON/YAML file, and
// built-in defaults, using viper the way lookatitude-beluga-ai wires
// its own "blocks + file" configuration surface.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Module holds process-wide settings.
type Module struct {
	LogLevel string `mapstructure:"log_level"`
}

// SocketReceiver configures the transport ingress.
type SocketReceiver struct {
	Host      string `mapstructure:"recv_host"`
	Port      string `mapstructure:"recv_port"`
	ChunkSize int    `mapstructure:"chunk_size"`
}

// SocketSender configures the transport egress.
type SocketSender struct {
	Host string `mapstructure:"send_host"`
	Port string `mapstructure:"send_port"`
}

// VAD configures the segmenter and its iterator.
type VAD struct {
	Threshold    float64 `mapstructure:"threshold"`
	SampleRate   int     `mapstructure:"sample_rate"`
	MinSilenceMS int     `mapstructure:"min_silence_ms"`
	MinSpeechMS  float64 `mapstructure:"min_speech_ms"`
	MaxSpeechMS  float64 `mapstructure:"max_speech_ms"`
	SpeechPadMS  int     `mapstructure:"speech_pad_ms"`
}

// Collaborator configures one external STT/LLM/TTS provider block.
type Collaborator struct {
	Provider string `mapstructure:"provider"`
	APIKey   string `mapstructure:"api_key"`
	Model    string `mapstructure:"model"`
	Language string `mapstructure:"language"`
	Voice    string `mapstructure:"voice"`
}

// Config is the full recognized configuration surface: module,
// socket-receiver, socket-sender, vad, plus one block per collaborator.
type Config struct {
	Module         Module         `mapstructure:"module"`
	SocketReceiver SocketReceiver `mapstructure:"socket-receiver"`
	SocketSender   SocketSender   `mapstructure:"socket-sender"`
	VAD            VAD            `mapstructure:"vad"`
	STT            Collaborator   `mapstructure:"stt"`
	LLM            Collaborator   `mapstructure:"llm"`
	TTS            Collaborator   `mapstructure:"tts"`
}

// Load builds a Config from defaults, an optional file at path (may be
// empty, in which case only env vars and defaults apply), and
// PIPELINE_-prefixed environment variables, in that ascending order of
// precedence.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("PIPELINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("module.log_level", "info")

	v.SetDefault("socket-receiver.recv_host", "0.0.0.0")
	v.SetDefault("socket-receiver.recv_port", "12345")
	v.SetDefault("socket-receiver.chunk_size", 1024)

	v.SetDefault("socket-sender.send_host", "0.0.0.0")
	v.SetDefault("socket-sender.send_port", "12346")

	v.SetDefault("vad.threshold", 0.3)
	v.SetDefault("vad.sample_rate", 16000)
	v.SetDefault("vad.min_silence_ms", 250)
	v.SetDefault("vad.min_speech_ms", 500.0)
	v.SetDefault("vad.max_speech_ms", 0.0)
	v.SetDefault("vad.speech_pad_ms", 30)

	v.SetDefault("stt.provider", "groq")
	v.SetDefault("llm.provider", "groq")
	v.SetDefault("tts.provider", "lokutor")
}
