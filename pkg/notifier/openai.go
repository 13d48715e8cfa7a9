package notifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"

	"github.com/sashabaranov/go-openai"
)

// DefaultPlayer reads an MP3 stream on stdin and plays it.
var DefaultPlayer = []string{"ffplay", "-nodisp", "-autoexit", "-loglevel", "quiet", "-"}

type speechClient interface {
	CreateSpeech(ctx context.Context, request openai.CreateSpeechRequest) (openai.RawResponse, error)
}

// OpenAIConfig is the configuration for an OpenAISpeaker.
type OpenAIConfig struct {
	APIKey string

	// Model defaults to tts-1.
	Model string

	// Voice defaults to alloy.
	Voice string

	// Player is the argv of a command that plays MP3 audio from stdin.
	Player []string

	Logger *slog.Logger
}

// OpenAISpeaker synthesizes speech with the OpenAI audio API and pipes the
// audio into a local player.
type OpenAISpeaker struct {
	client speechClient
	model  openai.SpeechModel
	voice  openai.SpeechVoice
	player []string
	logger *slog.Logger
}

// NewOpenAISpeaker creates an OpenAISpeaker.
func NewOpenAISpeaker(c OpenAIConfig) (*OpenAISpeaker, error) {
	if c.APIKey == "" {
		return nil, errors.New("openai api key is required")
	}
	return newOpenAISpeaker(openai.NewClient(c.APIKey), c)
}

func newOpenAISpeaker(client speechClient, c OpenAIConfig) (*OpenAISpeaker, error) {
	if c.Logger == nil {
		return nil, errors.New("logger is required")
	}

	model := openai.SpeechModel(c.Model)
	if model == "" {
		model = openai.TTSModel1
	}
	voice := openai.SpeechVoice(c.Voice)
	if voice == "" {
		voice = openai.VoiceAlloy
	}
	player := c.Player
	if len(player) == 0 {
		player = DefaultPlayer
	}

	return &OpenAISpeaker{
		client: client,
		model:  model,
		voice:  voice,
		player: append([]string(nil), player...),
		logger: c.Logger,
	}, nil
}

// Speak synthesizes text and plays it, returning once playback finishes.
func (s *OpenAISpeaker) Speak(ctx context.Context, text string) error {
	audio, err := s.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          s.model,
		Input:          text,
		Voice:          s.voice,
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return fmt.Errorf("synthesizing speech: %w", err)
	}
	defer audio.Close()

	cmd := exec.CommandContext(ctx, s.player[0], s.player[1:]...)
	cmd.Stdin = audio

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			s.logger.Debug("audio player not available", "player", s.player[0])
			return nil
		}
		return fmt.Errorf("playing speech with %s: %w", s.player[0], err)
	}

	return nil
}
