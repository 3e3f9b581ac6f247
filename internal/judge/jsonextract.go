package judge

import (
	"encoding/json"
	"strings"
)

// extractJSONObject parses raw as a JSON object; on failure it slices
// from the first '{' to the last '}' and retries once, mirroring the
// extractor's bracket-slice fallback for array responses.
func extractJSONObject(raw string, out any) error {
	if err := json.Unmarshal([]byte(raw), out); err == nil {
		return nil
	}

	start := strings.IndexByte(raw, '{')
	end := strings.LastIndexByte(raw, '}')
	if start < 0 || end <= start {
		return errNoJSONObject
	}
	return json.Unmarshal([]byte(raw[start:end+1]), out)
}
