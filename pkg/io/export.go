package io

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/matzehuels/sptree/pkg/planar"
)

// WriteRecords encodes records to w, one line per record. Positions are
// rounded to the nearest integer.
func WriteRecords(w io.Writer, records []planar.Record) error {
	bw := bufio.NewWriter(w)
	var buf []byte
	for _, rec := range records {
		buf = buf[:0]
		for _, n := range rec.Neighbors {
			buf = strconv.AppendInt(buf, int64(n), 10)
			buf = append(buf, ' ')
		}
		buf = strconv.AppendInt(buf, int64(math.Round(rec.Position.X)), 10)
		buf = append(buf, ' ')
		buf = strconv.AppendInt(buf, int64(math.Round(rec.Position.Y)), 10)
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return fmt.Errorf("write records: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write records: %w", err)
	}
	return nil
}

// WriteGraph encodes the current contents of g to w.
func WriteGraph(g *planar.Graph, w io.Writer) error {
	return WriteRecords(w, g.Export())
}

// ExportFile writes g to a text record file at path.
func ExportFile(g *planar.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteGraph(g, f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
