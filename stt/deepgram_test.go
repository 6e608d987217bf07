package stt

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*DeepgramClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewDeepgramClient("dg-test", log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("NewDeepgramClient: %v", err)
	}
	client.BaseURL = srv.URL
	return client, srv
}

func TestTranscribeExtractsTranscript(t *testing.T) {
	var gotAuth, gotContentType, gotQuery string
	var gotBody []byte

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		gotQuery = r.URL.RawQuery
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"results":{"channels":[{"alternatives":[{"transcript":"Hello world."}]}]}}`))
	})

	audio := []byte("fake-wav-bytes")
	got, err := client.Transcribe(context.Background(), audio, "audio/wav")
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if got != "Hello world." {
		t.Errorf("expected transcript %q, got %q", "Hello world.", got)
	}
	if gotAuth != "Token dg-test" {
		t.Errorf("expected Token auth header, got %q", gotAuth)
	}
	if gotContentType != "audio/wav" {
		t.Errorf("expected audio/wav content type, got %q", gotContentType)
	}
	if string(gotBody) != string(audio) {
		t.Errorf("audio bytes were not sent verbatim")
	}
	for _, param := range []string{"model=nova-3", "smart_format=true", "punctuate=true"} {
		if !strings.Contains(gotQuery, param) {
			t.Errorf("query %q missing %s", gotQuery, param)
		}
	}
}

func TestTranscribeNon2xxIsError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"err_msg":"invalid credentials"}`, http.StatusUnauthorized)
	})

	_, err := client.Transcribe(context.Background(), []byte("audio"), "audio/wav")
	if err == nil {
		t.Fatal("expected error for 401 response")
	}
	if !strings.Contains(err.Error(), "401") {
		t.Errorf("error should carry the status, got: %v", err)
	}
}

func TestTranscribeMalformedResponseIsError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	})

	_, err := client.Transcribe(context.Background(), []byte("audio"), "audio/wav")
	if err == nil {
		t.Fatal("expected error for unparsable response")
	}
}

func TestTranscribeEmptyResultsIsError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":{"channels":[]}}`))
	})

	_, err := client.Transcribe(context.Background(), []byte("audio"), "audio/wav")
	if err == nil {
		t.Fatal("expected error when no alternatives are present")
	}
	if !strings.Contains(err.Error(), "alternatives") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNewDeepgramClientRequiresKey(t *testing.T) {
	if _, err := NewDeepgramClient("", nil); err == nil {
		t.Fatal("expected error for empty API key")
	}
}
