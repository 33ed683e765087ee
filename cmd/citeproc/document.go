package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/citeproc-go/citeproc/internal/docfmt"
)

func loadDocument(path string) ([]docfmt.Cluster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc []docfmt.Cluster
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing document %q: %w", path, err)
	}
	return doc, nil
}
