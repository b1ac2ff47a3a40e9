// Command warmup precomputes the corpus embeddings offline and writes
// them to the cache database, so server starts never pay for encoding.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/unsta/chatbot-go/internal/config"
	"github.com/unsta/chatbot-go/internal/embedding"
	"github.com/unsta/chatbot-go/internal/faq"
	"github.com/unsta/chatbot-go/internal/logger"
	"github.com/unsta/chatbot-go/internal/storage"
	"github.com/unsta/chatbot-go/internal/warmup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel)

	corpus, err := faq.LoadCorpus(cfg.IntentsPath())
	if err != nil {
		log.WithError(err).Fatal("Failed to load intent corpus")
	}

	db, err := storage.New(cfg.SQLitePath())
	if err != nil {
		log.WithError(err).Fatal("Failed to open database")
	}
	defer func() { _ = db.Close() }()

	baseEncoder, err := embedding.NewFromConfig(context.Background(), cfg, nil)
	if err != nil {
		log.WithError(err).Fatal("Failed to create embedding encoder")
	}
	encoder := embedding.NewPool(baseEncoder, cfg.EncodeWorkers, cfg.EncodeTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	vectors, err := warmup.EnsureCorpusEmbeddings(ctx, log, db, encoder, corpus, nil)
	if err != nil {
		log.WithError(err).Fatal("Warmup failed")
	}

	phrases := 0
	for _, v := range vectors {
		phrases += len(v)
	}
	log.WithField("intents", len(vectors)).
		WithField("phrases", phrases).
		WithField("model", encoder.Model()).
		Info("Corpus embeddings ready")
}
