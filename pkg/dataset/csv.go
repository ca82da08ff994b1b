// Package dataset loads historical project data (size and total defects,
// one row per project) for the training and validation pipelines, from CSV
// files or HTTP JSON endpoints.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/defectcast/defectcast/pkg/regression"
)

// LoadCSV reads historical project samples from a CSV file with a header
// row. sizeColumn and defectsColumn name the two required columns; matching
// is case-insensitive. Extra columns are ignored.
func LoadCSV(path, sizeColumn, defectsColumn string) ([]regression.Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read dataset header: %w", err)
	}

	sizeIdx, defectsIdx := -1, -1
	for i, name := range header {
		switch {
		case strings.EqualFold(strings.TrimSpace(name), sizeColumn):
			sizeIdx = i
		case strings.EqualFold(strings.TrimSpace(name), defectsColumn):
			defectsIdx = i
		}
	}
	if sizeIdx < 0 {
		return nil, fmt.Errorf("dataset %s: missing column %q", path, sizeColumn)
	}
	if defectsIdx < 0 {
		return nil, fmt.Errorf("dataset %s: missing column %q", path, defectsColumn)
	}

	var samples []regression.Sample
	line := 1
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read dataset %s: %w", path, err)
		}
		line++

		size, err := strconv.ParseFloat(strings.TrimSpace(record[sizeIdx]), 64)
		if err != nil {
			return nil, fmt.Errorf("dataset %s line %d: non-numeric %s value %q", path, line, sizeColumn, record[sizeIdx])
		}
		defects, err := strconv.ParseFloat(strings.TrimSpace(record[defectsIdx]), 64)
		if err != nil {
			return nil, fmt.Errorf("dataset %s line %d: non-numeric %s value %q", path, line, defectsColumn, record[defectsIdx])
		}

		samples = append(samples, regression.Sample{Size: size, Defects: defects})
	}

	return samples, nil
}
