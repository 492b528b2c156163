package yandex

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecognizeRetriesUnauthorizedWithFullPayload(t *testing.T) {
	iamCalls := 0
	iamSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		iamCalls++
		fmt.Fprintf(w, `{"iamToken":"tok-%d"}`, iamCalls)
	}))
	defer iamSrv.Close()

	var bodies []request
	var tokens []string
	ocrSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		bodies = append(bodies, body)
		tokens = append(tokens, r.Header.Get("Authorization"))
		if len(bodies) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"result":{"textAnnotation":{"fullText":"Victory"}}}`)
	}))
	defer ocrSrv.Close()

	e := New("oauth", "folder")
	e.endpoint = ocrSrv.URL
	e.iamc.endpoint = iamSrv.URL

	image := []byte{0xFF, 0xD8, 0xFF, 0xE0}
	text, err := e.Recognize(context.Background(), image)
	require.NoError(t, err)
	assert.Equal(t, "Victory", text)

	// The second attempt must carry the full image payload again, not the
	// drained body of the first request, and a refetched token.
	require.Len(t, bodies, 2)
	assert.Equal(t, base64.StdEncoding.EncodeToString(image), bodies[1].Content)
	assert.Equal(t, "JPEG", bodies[1].MimeType)
	assert.Equal(t, []string{"Bearer tok-1", "Bearer tok-2"}, tokens)
}

func TestRecognizeJoinsLinesWhenFullTextMissing(t *testing.T) {
	iamSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"iamToken":"tok"}`)
	}))
	defer iamSrv.Close()

	ocrSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"result":{"textAnnotation":{"blocks":[{"lines":[{"text":"Victory"},{"text":"Alice 5/2/8"}]}]}}}`)
	}))
	defer ocrSrv.Close()

	e := New("oauth", "folder")
	e.endpoint = ocrSrv.URL
	e.iamc.endpoint = iamSrv.URL

	text, err := e.Recognize(context.Background(), []byte{0xFF, 0xD8})
	require.NoError(t, err)
	assert.Equal(t, "Victory\nAlice 5/2/8", text)
}
