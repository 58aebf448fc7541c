package speech

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, handler http.HandlerFunc) Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	s, err := NewService(Config{APIKey: "test-key", BaseURL: srv.URL + "/v1"})
	require.NoError(t, err)
	return s
}

func TestNewServiceRequiresAPIKey(t *testing.T) {
	_, err := NewService(Config{})
	require.Error(t, err)
}

func TestTranscribe(t *testing.T) {
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/audio/transcriptions", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1 << 20))
		require.Equal(t, "whisper-1", r.FormValue("model"))
		require.Equal(t, "ru", r.FormValue("language"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"text":" напомни завтра в 10 оплатить хостинг "}`))
	})

	text, err := s.Transcribe(context.Background(), strings.NewReader("fake-ogg-bytes"), "voice.ogg")
	require.NoError(t, err)
	require.Equal(t, "напомни завтра в 10 оплатить хостинг", text)
}

func TestSynthesize(t *testing.T) {
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/audio/speech", r.URL.Path)
		_, _ = w.Write([]byte("opus-bytes"))
	})

	audio, err := s.Synthesize(context.Background(), "Создала событие.")
	require.NoError(t, err)
	require.Equal(t, []byte("opus-bytes"), audio)
}

func TestSynthesizeRejectsEmptyInput(t *testing.T) {
	s, err := NewService(Config{APIKey: "test-key"})
	require.NoError(t, err)

	_, err = s.Synthesize(context.Background(), "   ")
	require.Error(t, err)
}
