package dataset

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/defectcast/defectcast/pkg/regression"
)

// maxResponseBytes caps dataset responses at 16 MiB.
const maxResponseBytes = 16 << 20

// FetchJSON pulls historical project samples from an HTTP endpoint returning
// JSON, extracting the size and defect columns with gjson path expressions.
//
// Example for an issue-tracker export shaped as
// {"projects":[{"size":120,"defects":340},...]}:
//
//	samples, err := dataset.FetchJSON(ctx, client, url,
//		"projects.#.size", "projects.#.defects")
//
// Both paths must resolve to arrays of equal length; each pair of elements
// becomes one sample.
func FetchJSON(ctx context.Context, client *http.Client, url, sizePath, defectsPath string) ([]regression.Sample, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create dataset request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch dataset from %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch dataset from %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read dataset response: %w", err)
	}

	sizes := gjson.GetBytes(body, sizePath)
	defects := gjson.GetBytes(body, defectsPath)

	if !sizes.IsArray() || !defects.IsArray() {
		return nil, fmt.Errorf("dataset paths %q and %q must resolve to arrays", sizePath, defectsPath)
	}

	sizeValues := sizes.Array()
	defectValues := defects.Array()
	if len(sizeValues) != len(defectValues) {
		return nil, fmt.Errorf("dataset column length mismatch: %d sizes vs %d defect counts",
			len(sizeValues), len(defectValues))
	}

	samples := make([]regression.Sample, 0, len(sizeValues))
	for i := range sizeValues {
		if sizeValues[i].Type != gjson.Number || defectValues[i].Type != gjson.Number {
			return nil, fmt.Errorf("dataset row %d: non-numeric value (size=%s, defects=%s)",
				i, sizeValues[i].Raw, defectValues[i].Raw)
		}
		samples = append(samples, regression.Sample{
			Size:    sizeValues[i].Float(),
			Defects: defectValues[i].Float(),
		})
	}

	return samples, nil
}
