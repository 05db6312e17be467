// Package store provides a file-backed vector index for document chunks.
//
// FileStore implements langchaingo's vectorstores.VectorStore interface over
// a JSON snapshot kept in a configurable directory, so the index survives
// restarts without requiring an external vector database. Similarity search
// ranks chunks by cosine similarity between the query embedding and the
// stored chunk embeddings.
//
//	embedder, _ := embeddings.NewEmbedder(llm)
//	vs, _ := store.New(embedder, ".docchat_index")
//	if vs.Persisted() {
//		_ = vs.Load()
//	}
//
//	retriever := vectorstores.ToRetriever(vs, 4)
//	docs, _ := retriever.GetRelevantDocuments(ctx, "what is a goroutine?")
package store
