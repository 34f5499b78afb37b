package speech

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errx "github.com/salesvoice-poc/server/internal/core/error"
)

func newTestSynthesizer(t *testing.T, handler http.HandlerFunc) *Synthesizer {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewSynthesizer(Config{
		APIKey:         "test-key",
		VoiceID:        "en-US-natalie",
		BaseURL:        srv.URL,
		TimeoutSeconds: 5,
	}, nil)
}

func TestSynthesizeDisabledWithoutKey(t *testing.T) {
	s := NewSynthesizer(Config{VoiceID: "en-US-natalie"}, nil)

	url, err := s.Synthesize(context.Background(), "hello", "en-US", "")
	require.NoError(t, err)
	assert.Empty(t, url)
}

func TestSynthesizeEmptyText(t *testing.T) {
	s := NewSynthesizer(Config{APIKey: "k", VoiceID: "en-US-natalie"}, nil)

	url, err := s.Synthesize(context.Background(), "   ", "en-US", "")
	require.NoError(t, err)
	assert.Empty(t, url)
}

func TestSynthesizeSuccess(t *testing.T) {
	var gotPayload generatePayload
	s := newTestSynthesizer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/speech/generate", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		json.NewEncoder(w).Encode(generateResponse{AudioFile: "https://cdn.example/audio.mp3"})
	})

	url, err := s.Synthesize(context.Background(), "hello there", "ko-KR", "")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example/audio.mp3", url)
	assert.Equal(t, "ko-KR-gyeong", gotPayload.VoiceID)
	assert.Equal(t, "MP3", gotPayload.Format)
	assert.Equal(t, 44100, gotPayload.SampleRate)
}

func TestSynthesizeUpstreamFailure(t *testing.T) {
	s := newTestSynthesizer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"voice not found"}`, http.StatusBadRequest)
	})

	url, err := s.Synthesize(context.Background(), "hello", "en-US", "")
	assert.Empty(t, url)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errx.ErrSynthesisFailure))
	assert.Equal(t, http.StatusBadRequest, errx.StatusOf(err))
}

func TestGenerateRequiresKey(t *testing.T) {
	s := NewSynthesizer(Config{}, nil)

	_, err := s.Generate(context.Background(), GenerateRequest{Text: "hello"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errx.ErrConfiguration))
}

func TestGenerateRequiresText(t *testing.T) {
	s := NewSynthesizer(Config{APIKey: "k", VoiceID: "en-US-natalie"}, nil)

	_, err := s.Generate(context.Background(), GenerateRequest{Text: " "})
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, errx.StatusOf(err))
}

func TestGenerateFullSurface(t *testing.T) {
	var gotPayload generatePayload
	s := newTestSynthesizer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotPayload))
		json.NewEncoder(w).Encode(generateResponse{
			AudioFile:            "https://cdn.example/a.wav",
			AudioLengthInSeconds: 2.4,
			ConsumedCharCount:    11,
			RemainingCharCount:   989,
			Warning:              "near quota",
		})
	})

	res, err := s.Generate(context.Background(), GenerateRequest{
		Text:       "hello world",
		VoiceID:    "en-UK-theo",
		Format:     "wav",
		SampleRate: 24000,
		Style:      "Conversational",
	})
	require.NoError(t, err)

	assert.Equal(t, "en-UK-theo", gotPayload.VoiceID)
	assert.Equal(t, "WAV", gotPayload.Format)
	assert.Equal(t, 24000, gotPayload.SampleRate)
	assert.Equal(t, "Conversational", gotPayload.Style)

	assert.Equal(t, "https://cdn.example/a.wav", res.AudioURL)
	assert.Equal(t, 2.4, res.Meta.LengthSeconds)
	assert.Equal(t, 11, res.Meta.ConsumedChars)
	assert.Equal(t, 989, res.Meta.RemainingChars)
	assert.Equal(t, "near quota", res.Meta.Warning)
}

func TestGeneratePropagatesUpstreamStatus(t *testing.T) {
	s := newTestSynthesizer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exhausted", http.StatusPaymentRequired)
	})

	_, err := s.Generate(context.Background(), GenerateRequest{Text: "hello"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errx.ErrSynthesisFailure))
	assert.Equal(t, http.StatusPaymentRequired, errx.StatusOf(err))
}

func TestGenerateNoAudioInResponse(t *testing.T) {
	s := newTestSynthesizer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(generateResponse{})
	})

	_, err := s.Generate(context.Background(), GenerateRequest{Text: "hello"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errx.ErrSynthesisFailure))
}

func TestCacheKeyDistinguishesVoice(t *testing.T) {
	assert.NotEqual(t, cacheKey("hello", "voice-a"), cacheKey("hello", "voice-b"))
	assert.Equal(t, cacheKey("hello", "voice-a"), cacheKey("hello", "voice-a"))
}

func TestNilCacheIsSafe(t *testing.T) {
	var c *Cache
	assert.Empty(t, c.Get(context.Background(), "text", "voice"))
	c.Put(context.Background(), "text", "voice", "url")
}
