package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/mrsingh-rishi/grammar-scorer/config"
	"github.com/mrsingh-rishi/grammar-scorer/llm"
	"github.com/mrsingh-rishi/grammar-scorer/server"
	"github.com/mrsingh-rishi/grammar-scorer/stt"
)

func main() {
	// Load .env if present
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, falling back to environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	transcriber, err := stt.NewDeepgramClient(cfg.DeepgramAPIKey, log.Default())
	if err != nil {
		log.Fatalf("Failed to create Deepgram client: %v", err)
	}

	grader, err := llm.NewGrader(cfg.LLMAPIKey, cfg.LLMBaseURL(), cfg.LLMModel, log.Default())
	if err != nil {
		log.Fatalf("Failed to create grader: %v", err)
	}

	app := server.New(transcriber, grader, log.Default())

	log.Printf("Grammar scorer listening on %s", cfg.ListenAddr)
	log.Fatal(app.Listen(cfg.ListenAddr))
}
