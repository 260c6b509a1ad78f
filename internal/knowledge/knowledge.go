// File path: internal/knowledge/knowledge.go
package knowledge

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed texts/*.txt
var texts embed.FS

// Doc is one chunk of a reference text.
type Doc struct {
	ID      string `json:"id"`
	Topic   string `json:"topic"`
	Chunk   int    `json:"chunk"`
	Content string `json:"content"`
}

// Topics lists the embedded reference topics in name order.
func Topics() []string {
	entries, err := fs.ReadDir(texts, "texts")
	if err != nil {
		return nil
	}
	topics := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		topics = append(topics, strings.TrimSuffix(entry.Name(), path.Ext(entry.Name())))
	}
	sort.Strings(topics)
	return topics
}

// Text returns the reference text for a topic such as "thermal".
func Text(topic string) (string, error) {
	topic = strings.ToLower(strings.TrimSpace(topic))
	data, err := texts.ReadFile(path.Join("texts", topic+".txt"))
	if err != nil {
		return "", fmt.Errorf("knowledge: unknown topic %q", topic)
	}
	return strings.TrimSpace(string(data)), nil
}

// Join concatenates the texts of several topics separated by blank lines.
func Join(topics ...string) (string, error) {
	parts := make([]string, 0, len(topics))
	for _, topic := range topics {
		text, err := Text(topic)
		if err != nil {
			return "", err
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "\n\n"), nil
}

// Chunks splits text into paragraph chunks on blank lines, trimming each and
// dropping empties.
func Chunks(text string) []string {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	var chunks []string
	for _, raw := range strings.Split(normalized, "\n\n") {
		if chunk := strings.TrimSpace(raw); chunk != "" {
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}

// ChunkDocs returns a topic's chunks with stable identifiers.
func ChunkDocs(topic string) ([]Doc, error) {
	text, err := Text(topic)
	if err != nil {
		return nil, err
	}
	chunks := Chunks(text)
	docs := make([]Doc, 0, len(chunks))
	for i, chunk := range chunks {
		docs = append(docs, Doc{ID: fmt.Sprintf("%s:%d", topic, i), Topic: topic, Chunk: i, Content: chunk})
	}
	return docs, nil
}
