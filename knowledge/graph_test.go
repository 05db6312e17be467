package knowledge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallnest/docchat/log"
)

func writeGraphFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "knowledge_graph.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const sampleGraph = `{
	"nodes": [
		{"id": "doc1", "type": "document"},
		{"id": "doc2", "type": "document"},
		{"id": "machine learning", "type": "topic"}
	],
	"edges": [
		{"source": "doc1", "target": "doc2", "weight": 2},
		{"source": "doc1", "target": "machine learning"}
	],
	"documents": {
		"doc1": {"topics": ["ML", "NLP"], "word_count": 500},
		"doc2": {"topics": ["nlp", "Data"], "word_count": 300}
	},
	"statistics": {
		"total_documents": 2,
		"total_nodes": 3,
		"total_edges": 2
	}
}`

func loadSampleGraph(t *testing.T) *Graph {
	t.Helper()
	g := NewGraph(WithLogger(&log.NoOpLogger{}))
	require.NoError(t, g.Load(writeGraphFile(t, sampleGraph)))
	return g
}

func TestGraph_Load(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		g := loadSampleGraph(t)
		assert.True(t, g.Loaded())
		assert.Equal(t, []string{"doc1", "doc2"}, g.Documents())
	})

	t.Run("missing file", func(t *testing.T) {
		g := NewGraph(WithLogger(&log.NoOpLogger{}))
		err := g.Load(filepath.Join(t.TempDir(), "nope.json"))
		assert.Error(t, err)
		assert.False(t, g.Loaded())
	})

	t.Run("invalid JSON", func(t *testing.T) {
		g := NewGraph(WithLogger(&log.NoOpLogger{}))
		err := g.Load(writeGraphFile(t, "{not json"))
		assert.Error(t, err)
		assert.False(t, g.Loaded())
	})

	t.Run("node without id is rejected", func(t *testing.T) {
		g := NewGraph(WithLogger(&log.NoOpLogger{}))
		err := g.Load(writeGraphFile(t, `{"nodes": [{"type": "document"}]}`))
		assert.ErrorContains(t, err, "id")
		assert.False(t, g.Loaded())
	})

	t.Run("edge without endpoints is rejected", func(t *testing.T) {
		g := NewGraph(WithLogger(&log.NoOpLogger{}))
		err := g.Load(writeGraphFile(t, `{"edges": [{"source": "doc1"}]}`))
		assert.ErrorContains(t, err, "target")
		assert.False(t, g.Loaded())
	})

	t.Run("failed load leaves no partial graph", func(t *testing.T) {
		g := loadSampleGraph(t)
		err := g.Load(writeGraphFile(t, "{broken"))
		assert.Error(t, err)
		// the previously loaded graph is still intact
		assert.True(t, g.Loaded())
		assert.Equal(t, []string{"doc1", "doc2"}, g.Documents())
	})

	t.Run("duplicate node ids keep first occurrence", func(t *testing.T) {
		g := NewGraph(WithLogger(&log.NoOpLogger{}))
		require.NoError(t, g.Load(writeGraphFile(t, `{
			"nodes": [
				{"id": "doc1", "type": "document", "rank": 1},
				{"id": "doc1", "type": "topic", "rank": 2}
			]
		}`)))
		assert.True(t, g.Loaded())
		node := g.nodes["doc1"]
		assert.Equal(t, "document", node.Type)
		assert.Equal(t, float64(1), node.Attrs["rank"])
	})
}

func TestGraph_UnloadedQueriesAreTotal(t *testing.T) {
	g := NewGraph(WithLogger(&log.NoOpLogger{}))

	assert.Empty(t, g.Documents())
	_, ok := g.DocumentInfo("doc1")
	assert.False(t, ok)
	assert.Empty(t, g.RelatedDocuments("doc1"))
	assert.Empty(t, g.DocumentTopics("doc1"))
	assert.Empty(t, g.DocumentsByTopic("ml"))
	assert.Empty(t, g.SearchTopics("ml"))
	assert.Empty(t, g.Statistics())
	assert.Equal(t, "Knowledge graph not loaded", g.Summary())
}

func TestGraph_AbsentDocument(t *testing.T) {
	g := loadSampleGraph(t)

	_, ok := g.DocumentInfo("ghost")
	assert.False(t, ok)
	assert.Empty(t, g.RelatedDocuments("ghost"))
	assert.Empty(t, g.DocumentTopics("ghost"))
}

func TestGraph_RelatedDocuments(t *testing.T) {
	g := loadSampleGraph(t)

	// doc1 connects to doc2 (document) and to "machine learning" (topic);
	// only document-typed neighbors are reported
	assert.ElementsMatch(t, []string{"doc2"}, g.RelatedDocuments("doc1"))
	assert.ElementsMatch(t, []string{"doc1"}, g.RelatedDocuments("doc2"))

	// the topic node has a document neighbor
	assert.ElementsMatch(t, []string{"doc1"}, g.RelatedDocuments("machine learning"))
}

func TestGraph_DocumentTopics(t *testing.T) {
	g := loadSampleGraph(t)

	assert.Equal(t, []string{"ML", "NLP"}, g.DocumentTopics("doc1"))

	info, ok := g.DocumentInfo("doc1")
	require.True(t, ok)
	assert.Equal(t, 500, info.WordCount)
}

func TestGraph_DocumentsByTopic(t *testing.T) {
	g := loadSampleGraph(t)

	t.Run("case-insensitive match", func(t *testing.T) {
		assert.Equal(t, []string{"doc1"}, g.DocumentsByTopic("ml"))
		assert.Equal(t, []string{"doc1"}, g.DocumentsByTopic("ML"))
	})

	t.Run("matches across documents", func(t *testing.T) {
		assert.Equal(t, []string{"doc1", "doc2"}, g.DocumentsByTopic("NLP"))
	})

	t.Run("no match", func(t *testing.T) {
		assert.Empty(t, g.DocumentsByTopic("quantum"))
	})
}

func TestGraph_SearchTopics(t *testing.T) {
	g := loadSampleGraph(t)

	t.Run("case-insensitive substring", func(t *testing.T) {
		assert.Equal(t, g.SearchTopics("nlp"), g.SearchTopics("NLP"))
	})

	t.Run("dedup and sort", func(t *testing.T) {
		// "NLP" (doc1) and "nlp" (doc2) collapse to the first occurrence
		assert.Equal(t, []string{"NLP"}, g.SearchTopics("nl"))
	})

	t.Run("multiple matches sorted", func(t *testing.T) {
		// every topic contains at least one of its own letters
		got := g.SearchTopics("")
		assert.Equal(t, []string{"Data", "ML", "NLP"}, got)
	})

	t.Run("no match", func(t *testing.T) {
		assert.Empty(t, g.SearchTopics("zzz"))
	})
}

func TestGraph_Statistics(t *testing.T) {
	g := loadSampleGraph(t)

	stats := g.Statistics()
	assert.Equal(t, float64(2), stats["total_documents"])
	assert.Equal(t, float64(3), stats["total_nodes"])
}

func TestGraph_Summary(t *testing.T) {
	g := loadSampleGraph(t)

	summary := g.Summary()
	assert.Contains(t, summary, "Knowledge Graph Summary:")
	assert.Contains(t, summary, "- Total Documents: 2")
	assert.Contains(t, summary, "- Total Nodes: 3")
	assert.Contains(t, summary, "- Total Edges: 2")
	assert.Contains(t, summary, "  - doc1: 500 words, 2 topics")
	assert.Contains(t, summary, "  - doc2: 300 words, 2 topics")
}

func TestGraph_DuplicateEdgesOverwriteAttributes(t *testing.T) {
	g := NewGraph(WithLogger(&log.NoOpLogger{}))
	require.NoError(t, g.Load(writeGraphFile(t, `{
		"nodes": [
			{"id": "a", "type": "document"},
			{"id": "b", "type": "document"}
		],
		"edges": [
			{"source": "a", "target": "b", "weight": 1},
			{"source": "b", "target": "a", "weight": 7}
		]
	}`)))

	// still a single adjacency entry per pair, last write wins for attributes
	assert.ElementsMatch(t, []string{"b"}, g.RelatedDocuments("a"))
	edge := g.adjacency["a"]["b"]
	assert.Equal(t, float64(7), edge.Attrs["weight"])
}

func TestGraph_UnlinkedDocumentHasNoNeighbors(t *testing.T) {
	g := NewGraph(WithLogger(&log.NoOpLogger{}))
	require.NoError(t, g.Load(writeGraphFile(t, `{
		"nodes": [],
		"edges": [],
		"documents": {"orphan": {"topics": ["Solo"], "word_count": 10}}
	}`)))

	// document metadata exists but no corresponding node; queries degrade
	assert.Equal(t, []string{"orphan"}, g.Documents())
	assert.Empty(t, g.RelatedDocuments("orphan"))
	assert.Equal(t, []string{"Solo"}, g.DocumentTopics("orphan"))
}
