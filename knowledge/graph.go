package knowledge

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/smallnest/docchat/log"
)

// Node is a single node of the knowledge graph. Extra JSON keys beyond id and
// type are kept in Attrs.
type Node struct {
	ID    string
	Type  string
	Attrs map[string]any
}

// UnmarshalJSON decodes a node entry, validating the required id field
func (n *Node) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	id, ok := raw["id"].(string)
	if !ok || id == "" {
		return fmt.Errorf("node entry is missing a string id")
	}
	n.ID = id

	if t, ok := raw["type"].(string); ok {
		n.Type = t
	}

	delete(raw, "id")
	delete(raw, "type")
	n.Attrs = raw

	return nil
}

// Edge connects two nodes. Edges are undirected and unique per node pair:
// a duplicate edge between the same pair overwrites the previous attributes.
type Edge struct {
	Source string
	Target string
	Attrs  map[string]any
}

// UnmarshalJSON decodes an edge entry, validating the required endpoints
func (e *Edge) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	source, ok := raw["source"].(string)
	if !ok || source == "" {
		return fmt.Errorf("edge entry is missing a string source")
	}
	target, ok := raw["target"].(string)
	if !ok || target == "" {
		return fmt.Errorf("edge entry is missing a string target")
	}

	e.Source = source
	e.Target = target

	delete(raw, "source")
	delete(raw, "target")
	e.Attrs = raw

	return nil
}

// DocumentInfo holds the per-document metadata stored in the graph file.
// Extra JSON keys beyond topics and word_count are kept in Attrs.
type DocumentInfo struct {
	Topics    []string
	WordCount int
	Attrs     map[string]any
}

// UnmarshalJSON decodes a document metadata record
func (d *DocumentInfo) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	if topics, ok := raw["topics"]; ok {
		list, ok := topics.([]any)
		if !ok {
			return fmt.Errorf("document topics must be a list of strings")
		}
		d.Topics = make([]string, 0, len(list))
		for _, t := range list {
			s, ok := t.(string)
			if !ok {
				return fmt.Errorf("document topics must be a list of strings")
			}
			d.Topics = append(d.Topics, s)
		}
	}

	if wc, ok := raw["word_count"]; ok {
		f, ok := wc.(float64)
		if !ok || f < 0 {
			return fmt.Errorf("document word_count must be a non-negative integer")
		}
		d.WordCount = int(f)
	}

	delete(raw, "topics")
	delete(raw, "word_count")
	d.Attrs = raw

	return nil
}

// graphFile is the on-disk shape of the knowledge graph JSON document
type graphFile struct {
	Nodes      []Node                  `json:"nodes"`
	Edges      []Edge                  `json:"edges"`
	Documents  map[string]DocumentInfo `json:"documents"`
	Statistics map[string]any          `json:"statistics"`
}

// Graph loads and queries the knowledge graph produced by the document
// indexing workflow.
//
// The graph is loaded once from a JSON file and is read-only afterwards.
// Every query method is total: on an unloaded graph, or for an absent key,
// it returns an empty result instead of failing.
type Graph struct {
	logger log.Logger

	loaded     bool
	nodes      map[string]Node
	adjacency  map[string]map[string]Edge
	documents  map[string]DocumentInfo
	statistics map[string]any
}

// Option configures a Graph
type Option func(*Graph)

// WithLogger sets the logger used for load diagnostics
func WithLogger(logger log.Logger) Option {
	return func(g *Graph) {
		g.logger = logger
	}
}

// NewGraph creates an unloaded knowledge graph accessor
func NewGraph(opts ...Option) *Graph {
	g := &Graph{
		logger: log.GetDefaultLogger(),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

// Load reads and indexes the knowledge graph JSON file at path.
//
// On failure the accessor stays unloaded with no partial graph, and all
// query methods keep returning empty results. Duplicate node ids keep the
// attributes of the first occurrence; duplicate edges between the same pair
// overwrite the previous edge attributes.
func (g *Graph) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read knowledge graph %s: %w", path, err)
	}

	var file graphFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse knowledge graph %s: %w", path, err)
	}

	nodes := make(map[string]Node, len(file.Nodes))
	for _, node := range file.Nodes {
		if _, exists := nodes[node.ID]; exists {
			// first occurrence wins
			continue
		}
		nodes[node.ID] = node
	}

	adjacency := make(map[string]map[string]Edge)
	addNeighbor := func(from, to string, edge Edge) {
		if adjacency[from] == nil {
			adjacency[from] = make(map[string]Edge)
		}
		adjacency[from][to] = edge
	}
	for _, edge := range file.Edges {
		addNeighbor(edge.Source, edge.Target, edge)
		addNeighbor(edge.Target, edge.Source, edge)
	}

	documents := file.Documents
	if documents == nil {
		documents = make(map[string]DocumentInfo)
	}
	statistics := file.Statistics
	if statistics == nil {
		statistics = make(map[string]any)
	}

	g.nodes = nodes
	g.adjacency = adjacency
	g.documents = documents
	g.statistics = statistics
	g.loaded = true

	g.logger.Info("loaded knowledge graph with %d nodes and %d edges", len(file.Nodes), len(file.Edges))

	return nil
}

// Loaded reports whether a graph has been loaded successfully
func (g *Graph) Loaded() bool {
	return g.loaded
}

// Documents returns all document names in the graph, lexicographically
// sorted. Empty if the graph is not loaded.
func (g *Graph) Documents() []string {
	if !g.loaded {
		return nil
	}

	names := make([]string, 0, len(g.documents))
	for name := range g.documents {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// DocumentInfo returns the metadata record for a document, if present
func (g *Graph) DocumentInfo(name string) (DocumentInfo, bool) {
	if !g.loaded {
		return DocumentInfo{}, false
	}

	info, ok := g.documents[name]
	return info, ok
}

// RelatedDocuments returns the names of documents connected to name in the
// graph. Only neighbors whose node type is "document" are included.
//
// The result order follows the adjacency enumeration and is unspecified;
// callers must not depend on it.
func (g *Graph) RelatedDocuments(name string) []string {
	if !g.loaded {
		return nil
	}

	var related []string
	for neighbor := range g.adjacency[name] {
		if node, ok := g.nodes[neighbor]; ok && node.Type == "document" {
			related = append(related, neighbor)
		}
	}

	return related
}

// DocumentTopics returns the topics associated with a document
func (g *Graph) DocumentTopics(name string) []string {
	info, ok := g.DocumentInfo(name)
	if !ok {
		return nil
	}
	return info.Topics
}

// DocumentsByTopic returns the names of documents whose topic list contains
// topic, matched case-insensitively
func (g *Graph) DocumentsByTopic(topic string) []string {
	if !g.loaded {
		return nil
	}

	var matching []string
	for _, name := range g.Documents() {
		for _, t := range g.documents[name].Topics {
			if strings.EqualFold(t, topic) {
				matching = append(matching, name)
				break
			}
		}
	}

	return matching
}

// SearchTopics returns the topics containing query as a case-insensitive
// substring. Case variants of the same topic are collapsed to the first
// occurrence; the result is lexicographically sorted.
func (g *Graph) SearchTopics(query string) []string {
	if !g.loaded {
		return nil
	}

	queryLower := strings.ToLower(query)
	seen := make(map[string]string)

	for _, name := range g.Documents() {
		for _, topic := range g.documents[name].Topics {
			lower := strings.ToLower(topic)
			if !strings.Contains(lower, queryLower) {
				continue
			}
			if _, ok := seen[lower]; !ok {
				seen[lower] = topic
			}
		}
	}

	matching := make([]string, 0, len(seen))
	for _, topic := range seen {
		matching = append(matching, topic)
	}
	sort.Strings(matching)

	return matching
}

// Statistics returns the precomputed aggregate counters from the graph file.
// Empty if the graph is not loaded.
func (g *Graph) Statistics() map[string]any {
	if !g.loaded {
		return map[string]any{}
	}
	return g.statistics
}

// Summary returns a human-readable multi-line report of the graph contents
func (g *Graph) Summary() string {
	if !g.loaded {
		return "Knowledge graph not loaded"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Knowledge Graph Summary:\n")
	fmt.Fprintf(&b, "- Total Documents: %d\n", g.statInt("total_documents"))
	fmt.Fprintf(&b, "- Total Nodes: %d\n", g.statInt("total_nodes"))
	fmt.Fprintf(&b, "- Total Edges: %d\n", g.statInt("total_edges"))
	b.WriteString("\nDocuments:\n")

	for _, name := range g.Documents() {
		info := g.documents[name]
		fmt.Fprintf(&b, "  - %s: %d words, %d topics\n", name, info.WordCount, len(info.Topics))
	}

	return b.String()
}

// statInt reads an integer counter from the statistics mapping
func (g *Graph) statInt(key string) int {
	switch v := g.statistics[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}
