package market

import (
	"encoding/json"
	"strconv"
	"time"
)

// Record is one raw market object as returned by the upstream API. Field
// names vary between endpoints and API versions, so all access goes through
// the typed accessors below; nothing outside this file should index the map.
type Record map[string]any

func (r Record) ID() string {
	for _, key := range []string{"id", "conditionId", "marketId"} {
		if s := r.str(key); s != "" {
			return s
		}
	}
	return ""
}

func (r Record) Title() string {
	for _, key := range []string{"question", "title", "name"} {
		if s := r.str(key); s != "" {
			return s
		}
	}
	return "Unknown Market"
}

func (r Record) Volume() float64 {
	return r.num("volumeNum", "volume")
}

func (r Record) Volume24h() float64 {
	return r.num("volume24hr", "volume24hrNum", "volume_24hr")
}

func (r Record) Liquidity() float64 {
	return r.num("liquidityNum", "liquidity")
}

func (r Record) EndDate() (time.Time, bool) {
	for _, key := range []string{"endDate", "end_date_iso", "endDateIso"} {
		s := r.str(key)
		if s == "" {
			continue
		}
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Outcomes returns the outcome labels, defaulting to Yes/No when the
// record carries none.
func (r Record) Outcomes() []string {
	if labels := r.strSlice("outcomes"); len(labels) >= 2 {
		return labels
	}
	return []string{"Yes", "No"}
}

// str returns the value at key as a string, or "" when absent/not a string.
func (r Record) str(key string) string {
	if v, ok := r[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// num tries each key in order and returns the first parseable non-negative
// number. The API serializes numerics inconsistently (float, int, string),
// so all three shapes are accepted. Returns 0 when nothing parses, which
// consumers treat as "unknown".
func (r Record) num(keys ...string) float64 {
	for _, key := range keys {
		v, ok := r[key]
		if !ok {
			continue
		}
		if f, ok := toFloat(v); ok && f >= 0 {
			return f
		}
	}
	return 0
}

// strSlice decodes a field that is either a JSON array or a JSON-encoded
// string containing an array (the API uses both).
func (r Record) strSlice(key string) []string {
	v, ok := r[key]
	if !ok {
		return nil
	}

	switch vv := v.(type) {
	case []any:
		out := make([]string, 0, len(vv))
		for _, e := range vv {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		var out []string
		if err := json.Unmarshal([]byte(vv), &out); err == nil {
			return out
		}
	}
	return nil
}

// numSlice decodes a field holding a list of numbers, tolerating arrays of
// floats, arrays of numeric strings, and JSON-encoded string forms of both.
func (r Record) numSlice(key string) []float64 {
	v, ok := r[key]
	if !ok {
		return nil
	}

	switch vv := v.(type) {
	case []any:
		out := make([]float64, 0, len(vv))
		for _, e := range vv {
			if f, ok := toFloat(e); ok {
				out = append(out, f)
			}
		}
		return out
	case string:
		var raw []any
		if err := json.Unmarshal([]byte(vv), &raw); err != nil {
			return nil
		}
		out := make([]float64, 0, len(raw))
		for _, e := range raw {
			if f, ok := toFloat(e); ok {
				out = append(out, f)
			}
		}
		return out
	}
	return nil
}

func toFloat(v any) (float64, bool) {
	switch vv := v.(type) {
	case float64:
		return vv, true
	case int:
		return float64(vv), true
	case int64:
		return float64(vv), true
	case json.Number:
		f, err := vv.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(vv, 64)
		return f, err == nil
	}
	return 0, false
}
