package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/pkg/errors"
)

const defaultBaseURL = "https://api.deepgram.com"

// transcriptionResponse mirrors Deepgram's prerecorded transcription
// response; only the transcript path is decoded.
type transcriptionResponse struct {
	Results struct {
		Channels []struct {
			Alternatives []struct {
				Transcript string `json:"transcript"`
			} `json:"alternatives"`
		} `json:"channels"`
	} `json:"results"`
}

// DeepgramClient transcribes prerecorded audio through Deepgram's REST API.
type DeepgramClient struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	Logger     *log.Logger
}

// NewDeepgramClient initializes a Deepgram client for the given API key.
func NewDeepgramClient(apiKey string, logger *log.Logger) (*DeepgramClient, error) {
	if apiKey == "" {
		return nil, errors.New("deepgram API key is required")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &DeepgramClient{
		APIKey:     apiKey,
		BaseURL:    defaultBaseURL,
		Model:      "nova-3",
		HTTPClient: http.DefaultClient,
		Logger:     logger,
	}, nil
}

// Transcribe sends the complete audio buffer to Deepgram in a single call
// and returns the transcript of the first alternative of the first channel.
// Smart formatting and punctuation are requested so the transcript arrives
// sentence-shaped. No timeout is enforced; long clips take as long as they
// take.
func (dg *DeepgramClient) Transcribe(ctx context.Context, audio []byte, mimetype string) (string, error) {
	url := fmt.Sprintf("%s/v1/listen?model=%s&smart_format=true&punctuate=true", dg.BaseURL, dg.Model)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(audio))
	if err != nil {
		return "", errors.Wrap(err, "build transcription request")
	}
	req.Header.Set("Authorization", fmt.Sprintf("Token %s", dg.APIKey))
	if mimetype != "" {
		req.Header.Set("Content-Type", mimetype)
	}

	resp, err := dg.HTTPClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "deepgram request failed")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "read deepgram response")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", errors.Errorf("deepgram returned %s: %s", resp.Status, body)
	}

	var parsed transcriptionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", errors.Wrap(err, "parse deepgram response")
	}
	if len(parsed.Results.Channels) == 0 || len(parsed.Results.Channels[0].Alternatives) == 0 {
		return "", errors.New("deepgram response contained no transcription alternatives")
	}

	transcript := parsed.Results.Channels[0].Alternatives[0].Transcript
	dg.Logger.Printf("Transcribed %d bytes of audio into %d characters", len(audio), len(transcript))
	return transcript, nil
}
