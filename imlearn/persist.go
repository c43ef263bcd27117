package imlearn

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// datasetExt is the archive extension for persisted datasets.
const datasetExt = ".json.gz"

// timeNow is swapped out by tests that need stable archive names.
var timeNow = time.Now

// archiveName builds "data_<stamp>[_prefix][_suffix]" the way the rest of
// the tooling expects to find archives.
func archiveName(prefix, suffix string) string {
	name := "data_" + timeNow().Format("20060102-150405")
	if prefix != "" {
		name += "_" + prefix
	}
	if suffix != "" {
		name += "_" + suffix
	}
	return name + datasetExt
}

// SaveDataset writes d to dir as a timestamped gzip-compressed JSON archive
// and returns the full path written.
func SaveDataset(dir string, d *Dataset, prefix, suffix string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("save dataset: empty directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("save dataset: %w", err)
	}
	path := filepath.Join(dir, archiveName(prefix, suffix))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("save dataset: %w", err)
	}
	zw := gzip.NewWriter(f)
	if err := json.NewEncoder(zw).Encode(d); err != nil {
		f.Close()
		return "", fmt.Errorf("save dataset %s: %w", path, err)
	}
	if err := zw.Close(); err != nil {
		f.Close()
		return "", fmt.Errorf("save dataset %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("save dataset %s: %w", path, err)
	}
	return path, nil
}

// LoadDataset reads an archive written by SaveDataset and verifies the
// alignment invariant before handing the dataset back.
func LoadDataset(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	defer f.Close()
	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("load dataset %s: %w", path, err)
	}
	d := NewDataset()
	if err := json.NewDecoder(zr).Decode(d); err != nil {
		zr.Close()
		return nil, fmt.Errorf("load dataset %s: %w", path, err)
	}
	// Drain to the gzip trailer so the checksum is actually verified; the
	// JSON decoder stops at the end of the value.
	if _, err := io.Copy(io.Discard, zr); err != nil {
		zr.Close()
		return nil, fmt.Errorf("load dataset %s: %w", path, err)
	}
	if err := zr.Close(); err != nil {
		return nil, fmt.Errorf("load dataset %s: %w", path, err)
	}
	if d.Observations == nil {
		d.Observations = make(map[string][][]float64)
	}
	if err := d.checkAligned(); err != nil {
		return nil, fmt.Errorf("load dataset %s: %w", path, err)
	}
	return d, nil
}
