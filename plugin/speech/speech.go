// Package speech wraps an OpenAI-compatible API for voice message
// handling: Whisper transcription of incoming audio and speech synthesis
// for replies.
package speech

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"
)

// maxSpeechInput is the synthesis API input limit; longer replies are
// sent as text by the caller, so truncation here is a safety net.
const maxSpeechInput = 4096

// Service transcribes incoming voice messages and voices replies.
type Service interface {
	// Transcribe converts an audio recording to text.
	Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error)

	// Synthesize renders text to speech and returns encoded audio bytes.
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

// Config selects the models and endpoint for speech processing.
type Config struct {
	APIKey  string
	BaseURL string
	// STTModel defaults to whisper-1.
	STTModel string
	// TTSModel defaults to tts-1.
	TTSModel string
	// Voice defaults to alloy.
	Voice string
}

type service struct {
	client   *openai.Client
	sttModel string
	ttsModel string
	voice    openai.SpeechVoice
}

// NewService creates a speech service.
func NewService(cfg Config) (Service, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("speech: API key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	s := &service{
		client:   openai.NewClientWithConfig(clientConfig),
		sttModel: cfg.STTModel,
		ttsModel: cfg.TTSModel,
		voice:    openai.SpeechVoice(cfg.Voice),
	}
	if s.sttModel == "" {
		s.sttModel = openai.Whisper1
	}
	if s.ttsModel == "" {
		s.ttsModel = string(openai.TTSModel1)
	}
	if s.voice == "" {
		s.voice = openai.VoiceAlloy
	}
	return s, nil
}

func (s *service) Transcribe(ctx context.Context, audio io.Reader, filename string) (string, error) {
	req := openai.AudioRequest{
		Model:    s.sttModel,
		FilePath: filename,
		Reader:   audio,
		Language: "ru",
	}

	resp, err := s.client.CreateTranscription(ctx, req)
	if err != nil {
		return "", errors.Wrap(err, "create transcription")
	}
	return strings.TrimSpace(resp.Text), nil
}

func (s *service) Synthesize(ctx context.Context, text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("speech: empty synthesis input")
	}
	if runes := []rune(text); len(runes) > maxSpeechInput {
		text = string(runes[:maxSpeechInput])
	}

	req := openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(s.ttsModel),
		Input:          text,
		Voice:          s.voice,
		ResponseFormat: openai.SpeechResponseFormatOpus,
	}

	resp, err := s.client.CreateSpeech(ctx, req)
	if err != nil {
		return nil, errors.Wrap(err, "create speech")
	}
	defer resp.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, resp); err != nil {
		return nil, errors.Wrap(err, "read speech response")
	}
	return buf.Bytes(), nil
}
