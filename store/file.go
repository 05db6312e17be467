package store

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"

	"github.com/smallnest/docchat/log"
)

// indexFileName is the single artifact kept inside the index directory
const indexFileName = "index.json"

// record is the on-disk shape of one indexed chunk
type record struct {
	ID        string         `json:"id"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Embedding []float32      `json:"embedding"`
}

// FileStore is a vector index persisted as a JSON snapshot in a directory.
//
// It implements langchaingo's vectorstores.VectorStore, so it can be plugged
// into vectorstores.ToRetriever and the rest of the langchaingo ecosystem.
// The index is append-only: documents are added during ingestion and the
// store is read-only during querying, so no locking is carried.
type FileStore struct {
	embedder embeddings.Embedder
	dir      string
	logger   log.Logger
	records  []record
}

var _ vectorstores.VectorStore = (*FileStore)(nil)

// Option configures a FileStore
type Option func(*FileStore)

// WithLogger sets the logger used for persistence diagnostics
func WithLogger(logger log.Logger) Option {
	return func(s *FileStore) {
		s.logger = logger
	}
}

// New creates a file-backed vector store rooted at dir. The directory is
// created on the first save.
func New(embedder embeddings.Embedder, dir string, opts ...Option) (*FileStore, error) {
	if embedder == nil {
		return nil, fmt.Errorf("an embedder is required")
	}
	if dir == "" {
		return nil, fmt.Errorf("an index directory is required")
	}

	s := &FileStore{
		embedder: embedder,
		dir:      dir,
		logger:   log.GetDefaultLogger(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

// Persisted reports whether an index snapshot exists on disk
func (s *FileStore) Persisted() bool {
	_, err := os.Stat(filepath.Join(s.dir, indexFileName))
	return err == nil
}

// Load reads the index snapshot from the store directory
func (s *FileStore) Load() error {
	path := filepath.Join(s.dir, indexFileName)

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read vector index %s: %w", path, err)
	}

	var records []record
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("failed to parse vector index %s: %w", path, err)
	}

	s.records = records
	s.logger.Info("loaded vector index with %d chunks from %s", len(records), s.dir)

	return nil
}

// AddDocuments embeds the documents and appends them to the index, then
// writes the snapshot through to disk. It returns the assigned chunk ids.
func (s *FileStore) AddDocuments(ctx context.Context, docs []schema.Document, options ...vectorstores.Option) ([]string, error) {
	if len(docs) == 0 {
		return nil, nil
	}

	opts := resolveOptions(options)
	embedder := s.embedder
	if opts.Embedder != nil {
		embedder = opts.Embedder
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.PageContent
	}

	vectors, err := embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed documents: %w", err)
	}
	if len(vectors) != len(docs) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d documents", len(vectors), len(docs))
	}

	ids := make([]string, len(docs))
	for i, doc := range docs {
		ids[i] = uuid.NewString()
		s.records = append(s.records, record{
			ID:        ids[i],
			Content:   doc.PageContent,
			Metadata:  doc.Metadata,
			Embedding: vectors[i],
		})
	}

	if err := s.save(); err != nil {
		return nil, err
	}

	return ids, nil
}

// SimilaritySearch embeds the query and returns the numDocuments most
// similar chunks by cosine similarity. The similarity score is attached to
// each returned document. vectorstores.WithScoreThreshold filters out
// chunks below the threshold.
func (s *FileStore) SimilaritySearch(ctx context.Context, query string, numDocuments int, options ...vectorstores.Option) ([]schema.Document, error) {
	if numDocuments <= 0 {
		return nil, fmt.Errorf("numDocuments must be positive")
	}
	if len(s.records) == 0 {
		return []schema.Document{}, nil
	}

	opts := resolveOptions(options)
	embedder := s.embedder
	if opts.Embedder != nil {
		embedder = opts.Embedder
	}

	queryVector, err := embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	type scored struct {
		index int
		score float32
	}

	scores := make([]scored, 0, len(s.records))
	for i, rec := range s.records {
		score := cosineSimilarity(queryVector, rec.Embedding)
		if opts.ScoreThreshold > 0 && score < opts.ScoreThreshold {
			continue
		}
		scores = append(scores, scored{index: i, score: score})
	}

	sort.Slice(scores, func(i, j int) bool {
		return scores[i].score > scores[j].score
	})

	if numDocuments < len(scores) {
		scores = scores[:numDocuments]
	}

	docs := make([]schema.Document, len(scores))
	for i, sc := range scores {
		rec := s.records[sc.index]
		docs[i] = schema.Document{
			PageContent: rec.Content,
			Metadata:    rec.Metadata,
			Score:       sc.score,
		}
	}

	return docs, nil
}

// Len returns the number of indexed chunks
func (s *FileStore) Len() int {
	return len(s.records)
}

// save writes the whole index snapshot atomically (temp file + rename)
func (s *FileStore) save() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create index directory %s: %w", s.dir, err)
	}

	data, err := json.Marshal(s.records)
	if err != nil {
		return fmt.Errorf("failed to encode vector index: %w", err)
	}

	path := filepath.Join(s.dir, indexFileName)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write vector index: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace vector index: %w", err)
	}

	return nil
}

// resolveOptions applies langchaingo vector store options
func resolveOptions(options []vectorstores.Option) vectorstores.Options {
	opts := vectorstores.Options{}
	for _, opt := range options {
		opt(&opts)
	}
	return opts
}

// cosineSimilarity computes the cosine similarity of two vectors. Vectors of
// mismatched or zero length score 0.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
