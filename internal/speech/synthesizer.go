// Package speech wraps the remote text-to-speech service. The chat path uses
// Synthesize, which degrades silently; the standalone endpoint uses Generate,
// which surfaces upstream failures with their detail.
package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	errx "github.com/salesvoice-poc/server/internal/core/error"
	logx "github.com/salesvoice-poc/server/pkg/logger"
)

// Config describes the synthesis service binding. APIKey may be empty, in
// which case synthesis is disabled and the chat path returns no audio.
type Config struct {
	APIKey         string `envconfig:"MURF_API_KEY"`
	VoiceID        string `envconfig:"MURF_VOICE_ID" default:"en-US-natalie"`
	BaseURL        string `envconfig:"MURF_BASE_URL" default:"https://api.murf.ai"`
	TimeoutSeconds int    `envconfig:"MURF_TIMEOUT_SECONDS" default:"60"`
	CacheTTL       string `envconfig:"SPEECH_CACHE_TTL" default:"24h"`
}

// GenerateRequest is the full surface of the standalone synthesis endpoint.
type GenerateRequest struct {
	Text           string `json:"text"`
	VoiceID        string `json:"voice_id,omitempty"`
	Language       string `json:"language,omitempty"`
	Format         string `json:"format,omitempty"`
	SampleRate     int    `json:"sample_rate,omitempty"`
	Style          string `json:"style,omitempty"`
	EncodeAsBase64 bool   `json:"encode_as_base64,omitempty"`
}

// GenerateResult carries the audio artifact plus usage metadata.
type GenerateResult struct {
	AudioURL    string       `json:"audio_url,omitempty"`
	AudioBase64 string       `json:"audio_base64,omitempty"`
	Meta        GenerateMeta `json:"meta"`
}

type GenerateMeta struct {
	LengthSeconds  float64 `json:"length_seconds,omitempty"`
	ConsumedChars  int     `json:"consumed_chars,omitempty"`
	RemainingChars int     `json:"remaining_chars,omitempty"`
	Warning        string  `json:"warning,omitempty"`
}

type generatePayload struct {
	Text           string `json:"text"`
	VoiceID        string `json:"voiceId"`
	Format         string `json:"format"`
	SampleRate     int    `json:"sampleRate,omitempty"`
	Style          string `json:"style,omitempty"`
	EncodeAsBase64 bool   `json:"encodeAsBase64,omitempty"`
}

type generateResponse struct {
	AudioFile            string  `json:"audioFile"`
	EncodedAudio         string  `json:"encodedAudio"`
	AudioLengthInSeconds float64 `json:"audioLengthInSeconds"`
	ConsumedCharCount    int     `json:"consumedCharacterCount"`
	RemainingCharCount   int     `json:"remainingCharacterCount"`
	Warning              string  `json:"warning"`
}

// Synthesizer is a stateless client for the speech service.
type Synthesizer struct {
	cfg    Config
	client *http.Client
	cache  *Cache
}

// NewSynthesizer builds the client. cache may be nil.
func NewSynthesizer(cfg Config, cache *Cache) *Synthesizer {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Synthesizer{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
		cache:  cache,
	}
}

// Enabled reports whether a service key is configured.
func (s *Synthesizer) Enabled() bool {
	return s.cfg.APIKey != ""
}

// Synthesize produces an audio URL for the chat path. Empty text or a missing
// service key yield ("", nil) without calling the remote service. Remote
// failures return a synthesis error; the chat handler logs and drops it so a
// turn never fails on audio.
func (s *Synthesizer) Synthesize(ctx context.Context, text, lang, voiceOverride string) (string, error) {
	if !s.Enabled() || strings.TrimSpace(text) == "" {
		return "", nil
	}

	voiceID := SelectVoice(voiceOverride, lang, s.cfg.VoiceID)
	if url := s.cache.Get(ctx, text, voiceID); url != "" {
		logx.Debug().Str("voice_id", voiceID).Msg("speech cache hit")
		return url, nil
	}

	logx.Debug().Str("language", lang).Str("voice_id", voiceID).Msg("generating speech")

	resp, _, err := s.call(ctx, generatePayload{
		Text:       text,
		VoiceID:    voiceID,
		Format:     "MP3",
		SampleRate: 44100,
	})
	if err != nil {
		return "", err
	}

	s.cache.Put(ctx, text, voiceID, resp.AudioFile)
	return resp.AudioFile, nil
}

// Generate serves the standalone synthesis endpoint with the full parameter
// surface. Unlike Synthesize, a missing service key is a configuration error
// and upstream failures propagate with their status and detail.
func (s *Synthesizer) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	if !s.Enabled() {
		return nil, errx.NewConfiguration("MURF_API_KEY")
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, errx.New(fmt.Errorf("text is required"), http.StatusBadRequest, "text is required")
	}

	voiceID := SelectVoice(req.VoiceID, req.Language, s.cfg.VoiceID)
	if voiceID == "" {
		return nil, errx.New(fmt.Errorf("no voice resolved"), http.StatusBadRequest, "voice_id is required")
	}

	format := strings.ToUpper(req.Format)
	if format == "" {
		format = "MP3"
	}

	resp, status, err := s.call(ctx, generatePayload{
		Text:           req.Text,
		VoiceID:        voiceID,
		Format:         format,
		SampleRate:     req.SampleRate,
		Style:          req.Style,
		EncodeAsBase64: req.EncodeAsBase64,
	})
	if err != nil {
		return nil, err
	}
	if resp.AudioFile == "" && resp.EncodedAudio == "" {
		return nil, errx.WrapSynthesis(fmt.Errorf("speech service returned no audio"), status)
	}

	return &GenerateResult{
		AudioURL:    resp.AudioFile,
		AudioBase64: resp.EncodedAudio,
		Meta: GenerateMeta{
			LengthSeconds:  resp.AudioLengthInSeconds,
			ConsumedChars:  resp.ConsumedCharCount,
			RemainingChars: resp.RemainingCharCount,
			Warning:        resp.Warning,
		},
	}, nil
}

func (s *Synthesizer) call(ctx context.Context, payload generatePayload) (*generateResponse, int, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, errx.WrapSynthesis(fmt.Errorf("marshal request: %w", err), 0)
	}

	url := strings.TrimRight(s.cfg.BaseURL, "/") + "/v1/speech/generate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, 0, errx.WrapSynthesis(fmt.Errorf("create request: %w", err), 0)
	}
	req.Header.Set("api-key", s.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := s.client.Do(req)
	if err != nil {
		return nil, 0, errx.WrapSynthesis(fmt.Errorf("call speech service: %w", err), 0)
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(httpResp.Body, 2048))
		return nil, httpResp.StatusCode, errx.WrapSynthesis(
			fmt.Errorf("speech service status %d: %s", httpResp.StatusCode, strings.TrimSpace(string(detail))),
			httpResp.StatusCode,
		)
	}

	var resp generateResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, httpResp.StatusCode, errx.WrapSynthesis(fmt.Errorf("decode response: %w", err), 0)
	}
	return &resp, httpResp.StatusCode, nil
}
