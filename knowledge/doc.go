// Package knowledge loads and queries the precomputed knowledge graph that
// accompanies the document corpus.
//
// The graph is a single JSON document with four top-level keys:
//
//   - nodes: a list of {id, type, ...attributes} objects
//   - edges: a list of {source, target, ...attributes} objects, undirected
//     with unique adjacency per node pair
//   - documents: a mapping of document name to {topics, word_count, ...}
//   - statistics: a flat mapping of precomputed counters
//
// A Graph is loaded once at startup and is read-only for the rest of the
// session. Load failures are recoverable: the accessor stays in an unloaded
// state in which every query method returns an empty result, so callers can
// degrade gracefully instead of branching on load success everywhere.
//
//	g := knowledge.NewGraph()
//	if err := g.Load("knowledge_graph.json"); err != nil {
//		log.Warn("knowledge graph unavailable: %v", err)
//	}
//
//	for _, name := range g.Documents() {
//		topics := g.DocumentTopics(name)
//		...
//	}
//
// Topic matching is case-insensitive throughout.
package knowledge
