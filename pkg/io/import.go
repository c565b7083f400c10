package io

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	errs "github.com/matzehuels/sptree/pkg/errors"
	"github.com/matzehuels/sptree/pkg/planar"
)

// maxLineSize bounds a single record line. High-degree vertices produce long
// lines, so the scanner default of 64 KiB is raised.
const maxLineSize = 4 << 20

// ReadRecords decodes text records from r, one record per line.
//
// ReadRecords only checks the syntax of each line. Use [ReadGraph] to also
// validate the adjacency. It does not close r.
func ReadRecords(r io.Reader) ([]planar.Record, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var (
		records []planar.Record
		blank   int // blank lines not yet followed by a record
		lineNo  int
	)
	for sc.Scan() {
		lineNo++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			blank++
			continue
		}
		if blank > 0 {
			return nil, errs.New(errs.ErrCodeMalformedRecord,
				"line %d: blank record", lineNo-blank)
		}
		rec, err := parseRecord(fields)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeMalformedRecord, err, "line %d", lineNo)
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}
	return records, nil
}

func parseRecord(fields []string) (planar.Record, error) {
	if len(fields) < 2 {
		return planar.Record{}, fmt.Errorf("want at least 2 fields (x y), got %d", len(fields))
	}
	values := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return planar.Record{}, fmt.Errorf("field %d: %q is not an integer", i+1, f)
		}
		values[i] = v
	}
	k := len(values) - 2
	return planar.Record{
		Neighbors: values[:k:k],
		Position:  planar.Point{X: float64(values[k]), Y: float64(values[k+1])},
	}, nil
}

// ReadGraph decodes text records from r and loads them into a new graph.
func ReadGraph(r io.Reader) (*planar.Graph, error) {
	records, err := ReadRecords(r)
	if err != nil {
		return nil, err
	}
	g := planar.New()
	if err := g.Load(records); err != nil {
		return nil, err
	}
	return g, nil
}

// ImportFile reads the graph stored at path.
//
// A missing file is reported as FILE_NOT_FOUND. Decoding errors are the same
// as for [ReadGraph].
func ImportFile(path string) (*planar.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "graph file %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	g, err := ReadGraph(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}
