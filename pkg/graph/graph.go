package graph

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	errs "github.com/matzehuels/sptree/pkg/errors"
	"github.com/matzehuels/sptree/pkg/planar"
)

// =============================================================================
// Graph Serialization API
// =============================================================================

// MarshalGraph converts a planar graph to JSON bytes.
func MarshalGraph(g *planar.Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeGraphTo(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteGraphFile writes a planar graph to a JSON file.
func WriteGraphFile(g *planar.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return writeGraphTo(g, f)
}

// WriteGraph writes a planar graph as JSON to an io.Writer.
func WriteGraph(g *planar.Graph, w io.Writer) error {
	return writeGraphTo(g, w)
}

// ReadGraphFile reads a JSON file and returns the decoded graph.
// A missing file is reported as FILE_NOT_FOUND.
func ReadGraphFile(path string) (*planar.Graph, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "graph file %s", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return readGraphFrom(f)
}

// ReadGraph decodes a JSON graph from an io.Reader.
func ReadGraph(r io.Reader) (*planar.Graph, error) {
	return readGraphFrom(r)
}

// FormatForPath picks the file format from the extension of path: JSON for
// ".json", the text record format for everything else.
func FormatForPath(path string) string {
	if strings.EqualFold(filepath.Ext(path), "."+FormatJSON) {
		return FormatJSON
	}
	return FormatText
}

// =============================================================================
// Internal Implementation
// =============================================================================

func writeGraphTo(g *planar.Graph, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FromPlanar(g)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

func readGraphFrom(r io.Reader) (*planar.Graph, error) {
	var data Graph
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return ToPlanar(data)
}
