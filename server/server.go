// Package server exposes the analyze pipeline over HTTP.
package server

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"

	"github.com/mrsingh-rishi/grammar-scorer/llm"
	"github.com/mrsingh-rishi/grammar-scorer/normalizer"
)

// Transcriber converts raw audio bytes into a transcript.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimetype string) (string, error)
}

// Grader scores a transcript. It never fails; errors degrade into the result.
type Grader interface {
	Grade(ctx context.Context, text string) llm.GradingResult
}

// AnalysisResponse is the body returned by POST /analyze.
type AnalysisResponse struct {
	OriginalTranscript string `json:"original_transcript"`
	CleanedTranscript  string `json:"cleaned_transcript"`
	GrammarScore       any    `json:"grammar_score"`
	Feedback           string `json:"feedback"`
}

var allowedExts = map[string]bool{
	".wav":  true,
	".mp3":  true,
	".m4a":  true,
	".webm": true,
	".ogg":  true,
}

var extToMime = map[string]string{
	".wav":  "audio/wav",
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4", // sometimes audio/x-m4a; Deepgram accepts audio/mp4
	".webm": "audio/webm",
	".ogg":  "audio/ogg",
}

// Server wires the pipeline collaborators into HTTP handlers.
type Server struct {
	transcriber Transcriber
	grader      Grader
	logger      *log.Logger
}

// New builds the Fiber app with all routes registered.
func New(transcriber Transcriber, grader Grader, lg *log.Logger) *fiber.App {
	if lg == nil {
		lg = log.Default()
	}
	s := &Server{transcriber: transcriber, grader: grader, logger: lg}

	app := fiber.New()
	app.Use(fiberrecover.New())
	app.Use(fiberlogger.New())

	app.Get("/health", s.handleHealth)
	app.Post("/analyze", s.handleAnalyze)

	return app
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// handleAnalyze runs the upload through transcription, cleanup, and grading.
// The three steps are strictly sequential; only transcription failures abort
// the request, grading failures ride along in the response body.
func (s *Server) handleAnalyze(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "a `file` upload is required"})
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedExts[ext] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("Unsupported file type %s. Allowed: %s", ext, strings.Join(sortedExts(), ", ")),
		})
	}

	mimetype := inferMimetype(strings.ToLower(fileHeader.Header.Get("Content-Type")), ext)

	// Scratch file keeps the original extension so the transcription
	// service can sniff the container format.
	scratch := filepath.Join(os.TempDir(), fmt.Sprintf("upload-%s%s", uuid.NewString(), ext))
	if err := c.SaveFile(fileHeader, scratch); err != nil {
		s.logger.Printf("Failed to save upload: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to store upload"})
	}
	// Removed on every exit path; already-gone is fine.
	defer os.Remove(scratch)

	audio, err := os.ReadFile(scratch)
	if err != nil {
		s.logger.Printf("Failed to read scratch file: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to read upload"})
	}

	transcript, err := s.transcriber.Transcribe(c.UserContext(), audio, mimetype)
	if err != nil {
		s.logger.Printf("Transcription failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fmt.Sprintf("Transcription failed: %v", err),
		})
	}

	cleaned := normalizer.Normalize(transcript)
	result := s.grader.Grade(c.UserContext(), cleaned)

	return c.JSON(AnalysisResponse{
		OriginalTranscript: transcript,
		CleanedTranscript:  cleaned,
		GrammarScore:       result.Score,
		Feedback:           result.Feedback,
	})
}

// inferMimetype prefers the declared content type when it is an audio type,
// then falls back to the extension mapping.
func inferMimetype(declared, ext string) string {
	if strings.HasPrefix(declared, "audio/") {
		return declared
	}
	if mt, ok := extToMime[ext]; ok {
		return mt
	}
	return "application/octet-stream"
}

func sortedExts() []string {
	exts := make([]string, 0, len(allowedExts))
	for ext := range allowedExts {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
