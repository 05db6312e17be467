package chatbot

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tmc/langchaingo/documentloaders"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/textsplitter"
	"github.com/tmc/langchaingo/vectorstores"

	"github.com/smallnest/docchat/knowledge"
	"github.com/smallnest/docchat/log"
	"github.com/smallnest/docchat/store"
)

// systemPrompt frames every generation call. The retrieved chunks are
// injected into the user message, bracketed by source labels.
const systemPrompt = `You are a helpful AI assistant that answers questions based on the provided context from technical documents.

Use the context to answer the question. If you don't know the answer or if the context doesn't contain the information, say so honestly. Don't make up information.

When answering:
1. Be concise but comprehensive
2. Cite which document the information comes from when possible
3. If the question requires information from multiple documents, synthesize the information`

// Answer is the result of a single chatbot query.
type Answer struct {
	// Text is the generated answer.
	Text string

	// Sources are the retrieved chunks the answer was conditioned on.
	Sources []schema.Document
}

// Chatbot coordinates document ingestion, retrieval and generation, and
// serves the interactive loop.
//
// A Chatbot is single-session and synchronous: the knowledge graph is
// read-only after Setup, the vector index is appended to only during Setup,
// and each Query fully completes before the next.
type Chatbot struct {
	cfg    Config
	logger log.Logger

	llm      llms.Model
	embedder embeddings.Embedder
	index    *store.FileStore
	graph    *knowledge.Graph

	// conversation buffer, question/answer pairs in order
	history []llms.MessageContent

	ready bool
}

// Option configures a Chatbot
type Option func(*Chatbot)

// WithLogger sets the logger used for setup and query diagnostics
func WithLogger(logger log.Logger) Option {
	return func(c *Chatbot) {
		c.logger = logger
	}
}

// New creates a chatbot from the given configuration. A missing OpenAI
// credential is a construction error; everything else is deferred to Setup.
func New(cfg Config, opts ...Option) (*Chatbot, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	llm, err := openai.New(
		openai.WithToken(cfg.OpenAIKey),
		openai.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenAI client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	c := &Chatbot{
		cfg:      cfg,
		logger:   log.GetDefaultLogger(),
		llm:      llm,
		embedder: embedder,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.logger.Info("chatbot initialized with model %s", cfg.Model)

	return c, nil
}

// Setup prepares the chatbot for querying.
//
// It loads the knowledge graph (a missing or corrupt graph is non-fatal and
// only degrades the docs/graph commands), then loads the persisted vector
// index or, when absent or forceRebuild is set, ingests the documents
// directory from scratch. A missing documents directory during ingestion is
// fatal to Setup.
func (c *Chatbot) Setup(ctx context.Context, forceRebuild bool) error {
	graph := knowledge.NewGraph(knowledge.WithLogger(c.logger))
	if err := graph.Load(c.cfg.GraphPath); err != nil {
		c.logger.Warn("knowledge graph unavailable: %v", err)
	} else {
		c.graph = graph
	}

	index, err := store.New(c.embedder, c.cfg.IndexDir, store.WithLogger(c.logger))
	if err != nil {
		return err
	}

	if !forceRebuild && index.Persisted() {
		if err := index.Load(); err != nil {
			c.logger.Warn("failed to load vector index, rebuilding: %v", err)
		}
	}

	if index.Len() == 0 {
		if err := c.ingest(ctx, index); err != nil {
			return err
		}
	}

	c.index = index
	c.ready = true

	c.logger.Info("chatbot setup complete, %d chunks indexed", index.Len())

	return nil
}

// ingest loads the document corpus, splits it into overlapping chunks and
// indexes the chunks
func (c *Chatbot) ingest(ctx context.Context, index *store.FileStore) error {
	info, err := os.Stat(c.cfg.DocumentsDir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("documents directory not found: %s", c.cfg.DocumentsDir)
	}

	docs, err := c.loadDocuments(ctx)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		return fmt.Errorf("no documents found in %s", c.cfg.DocumentsDir)
	}

	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(c.cfg.ChunkSize),
		textsplitter.WithChunkOverlap(c.cfg.ChunkOverlap),
		textsplitter.WithSeparators([]string{"\n\n", "\n", ". ", " ", ""}),
	)

	chunks, err := textsplitter.SplitDocuments(splitter, docs)
	if err != nil {
		return fmt.Errorf("failed to split documents: %w", err)
	}

	c.logger.Info("split %d documents into %d chunks", len(docs), len(chunks))

	if _, err := index.AddDocuments(ctx, chunks); err != nil {
		return fmt.Errorf("failed to index chunks: %w", err)
	}

	c.logger.Info("indexed %d chunks into %s", len(chunks), c.cfg.IndexDir)

	return nil
}

// loadDocuments walks the documents directory recursively and loads every
// text file as one document
func (c *Chatbot) loadDocuments(ctx context.Context) ([]schema.Document, error) {
	var docs []schema.Document

	err := filepath.WalkDir(c.cfg.DocumentsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".txt" && ext != ".md" {
			return nil
		}

		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}
		loaded, err := documentloaders.NewText(f).Load(ctx)
		f.Close()
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}

		for i := range loaded {
			if loaded[i].Metadata == nil {
				loaded[i].Metadata = make(map[string]any)
			}
			loaded[i].Metadata["source"] = path
		}
		docs = append(docs, loaded...)

		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("loaded %d documents from %s", len(docs), c.cfg.DocumentsDir)

	return docs, nil
}

// Query answers a question using the indexed documents and the running
// conversation history. It returns the generated answer together with the
// retrieved source chunks.
func (c *Chatbot) Query(ctx context.Context, question string) (*Answer, error) {
	if !c.ready {
		return nil, fmt.Errorf("chatbot not set up: call Setup first")
	}

	retriever := vectorstores.ToRetriever(c.index, c.cfg.TopK)
	docs, err := retriever.GetRelevantDocuments(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}

	var contextParts []string
	for i, doc := range docs {
		source := "Unknown"
		if s, ok := doc.Metadata["source"]; ok {
			source = fmt.Sprintf("%v", s)
		}
		contextParts = append(contextParts, fmt.Sprintf("[%d] Source: %s\nContent: %s", i+1, source, doc.PageContent))
	}

	prompt := fmt.Sprintf("Context:\n%s\n\nQuestion: %s\n\nAnswer:", strings.Join(contextParts, "\n\n"), question)

	messages := make([]llms.MessageContent, 0, len(c.history)+2)
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt))
	messages = append(messages, c.history...)
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, prompt))

	resp, err := c.llm.GenerateContent(ctx, messages, llms.WithTemperature(c.cfg.Temperature))
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	answer := ""
	if len(resp.Choices) > 0 {
		answer = resp.Choices[0].Content
	}

	// remember the bare question, not the context-stuffed prompt
	c.history = append(c.history,
		llms.TextParts(llms.ChatMessageTypeHuman, question),
		llms.TextParts(llms.ChatMessageTypeAI, answer),
	)

	return &Answer{Text: answer, Sources: docs}, nil
}

// Graph returns the loaded knowledge graph accessor, or nil when the graph
// was unavailable at setup
func (c *Chatbot) Graph() *knowledge.Graph {
	return c.graph
}

// FormatAnswer renders an answer for display, appending a numbered list of
// the distinct source documents when any were retrieved.
func FormatAnswer(a *Answer) string {
	var b strings.Builder
	b.WriteString(a.Text)

	names := sourceNames(a.Sources)
	if len(names) > 0 {
		b.WriteString("\n\nSources:\n")
		for i, name := range names {
			fmt.Fprintf(&b, "%d. %s\n", i+1, name)
		}
	}

	return b.String()
}

// sourceNames returns the deduplicated document names for a list of source
// chunks, in first-seen order. Names are the file stem of the chunk's source
// path.
func sourceNames(docs []schema.Document) []string {
	var names []string
	seen := make(map[string]bool)

	for _, doc := range docs {
		s, ok := doc.Metadata["source"]
		if !ok {
			continue
		}
		path := fmt.Sprintf("%v", s)
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}

	return names
}
