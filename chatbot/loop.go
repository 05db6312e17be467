package chatbot

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	promptStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	answerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Italic(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// Loop runs the interactive question and answer session until the input is
// exhausted, the context is canceled, or the user asks to leave.
//
// Besides free-form questions it understands a few commands: exit, quit and
// q end the session, docs lists the known documents, and graph prints the
// knowledge graph summary. Query errors are printed and the session
// continues.
func (c *Chatbot) Loop(ctx context.Context, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, titleStyle.Render("Document Chatbot"))
	fmt.Fprintln(out, noticeStyle.Render("Ask questions about your documents. Type 'exit' to quit, 'docs' to list documents, 'graph' for the knowledge graph summary."))
	fmt.Fprintln(out)

	scanner := bufio.NewScanner(in)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		fmt.Fprint(out, promptStyle.Render("You: "))
		if !scanner.Scan() {
			fmt.Fprintln(out)
			fmt.Fprintln(out, noticeStyle.Render("Goodbye!"))
			return scanner.Err()
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		switch strings.ToLower(input) {
		case "exit", "quit", "q":
			fmt.Fprintln(out, noticeStyle.Render("Goodbye!"))
			return nil
		case "docs":
			c.printDocuments(out)
			continue
		case "graph":
			c.printGraphSummary(out)
			continue
		}

		answer, err := c.Query(ctx, input)
		if err != nil {
			fmt.Fprintln(out, errorStyle.Render(fmt.Sprintf("Error: %v", err)))
			continue
		}

		fmt.Fprintln(out, answerStyle.Render(FormatAnswer(answer)))
		fmt.Fprintln(out)
	}
}

// printDocuments lists the known documents. The knowledge graph listing with
// word counts is preferred; without a graph the documents directory is
// scanned for file stems instead.
func (c *Chatbot) printDocuments(out io.Writer) {
	if c.graph != nil {
		names := c.graph.Documents()
		fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Documents (%d):", len(names))))
		for _, name := range names {
			if info, ok := c.graph.DocumentInfo(name); ok {
				fmt.Fprintf(out, "  - %s (%d words, topics: %s)\n", name, info.WordCount, strings.Join(info.Topics, ", "))
			} else {
				fmt.Fprintf(out, "  - %s\n", name)
			}
		}
		return
	}

	names, err := c.listDocumentFiles()
	if err != nil {
		fmt.Fprintln(out, errorStyle.Render(fmt.Sprintf("Error: %v", err)))
		return
	}
	fmt.Fprintln(out, titleStyle.Render(fmt.Sprintf("Documents (%d):", len(names))))
	for _, name := range names {
		fmt.Fprintf(out, "  - %s\n", name)
	}
}

func (c *Chatbot) printGraphSummary(out io.Writer) {
	if c.graph == nil {
		fmt.Fprintln(out, noticeStyle.Render("Knowledge graph not available"))
		return
	}
	fmt.Fprintln(out, c.graph.Summary())
}

// listDocumentFiles returns the sorted stems of the text files under the
// documents directory
func (c *Chatbot) listDocumentFiles() ([]string, error) {
	entries, err := os.ReadDir(c.cfg.DocumentsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read documents directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".txt" && ext != ".md" {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())))
	}
	sort.Strings(names)

	return names, nil
}
