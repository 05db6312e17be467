// Command docchat is an interactive chatbot over a local document corpus.
// It indexes the documents into a persistent vector store, answers questions
// with retrieval-augmented generation against an OpenAI chat model, and can
// report on an optional knowledge graph describing the corpus.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/kataras/golog"

	"github.com/smallnest/docchat/chatbot"
	"github.com/smallnest/docchat/log"
)

func main() {
	// .env is optional, real environment variables take precedence
	_ = godotenv.Load()

	cfg := chatbot.LoadConfig()

	docsDir := flag.String("docs", "", "documents directory (overrides DOCUMENTS_DIR)")
	graphPath := flag.String("graph", "", "knowledge graph JSON path (overrides KNOWLEDGE_GRAPH_PATH)")
	indexDir := flag.String("index", "", "vector index directory (overrides INDEX_DIR)")
	rebuild := flag.Bool("rebuild", false, "rebuild the vector index even if a persisted one exists")
	verbose := flag.Bool("verbose", false, "enable debug logging")
	flag.Parse()

	if *docsDir != "" {
		cfg.DocumentsDir = *docsDir
	}
	if *graphPath != "" {
		cfg.GraphPath = *graphPath
	}
	if *indexDir != "" {
		cfg.IndexDir = *indexDir
	}

	logger := log.NewGologLogger(golog.New())
	if *verbose {
		logger.SetLevel(log.LogLevelDebug)
	} else {
		logger.SetLevel(log.LogLevelInfo)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bot, err := chatbot.New(cfg, chatbot.WithLogger(logger))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := bot.Setup(ctx, *rebuild); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if err := bot.Loop(ctx, os.Stdin, os.Stdout); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
