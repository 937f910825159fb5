package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Outcome values of a Result.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Result is the outcome for one key.
type Result struct {
	Key    string `json:"key"`
	Status string `json:"status"`
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Summary aggregates the results of a batch.
type Summary struct {
	Total      int      `json:"total"`
	Successful int      `json:"successful"`
	Failed     int      `json:"failed"`
	Results    []Result `json:"results"`
}

// ParseKeys reads a parameter that is either a single key or an array of
// keys. Surrounding whitespace is trimmed and duplicates are dropped, keeping
// the first occurrence.
func ParseKeys(param any, name string) ([]string, error) {
	if param == nil {
		return nil, fmt.Errorf("%s is required", name)
	}

	var raw []string
	switch v := param.(type) {
	case string:
		raw = []string{v}
	case []string:
		raw = v
	case []any:
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%s[%d] must be a string", name, i)
			}
			raw = append(raw, s)
		}
	default:
		return nil, fmt.Errorf("%s must be a string or array of strings", name)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%s cannot be empty", name)
	}

	keys := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for i, k := range raw {
		k = strings.TrimSpace(k)
		if k == "" {
			if len(raw) == 1 {
				return nil, fmt.Errorf("%s cannot be empty", name)
			}
			return nil, fmt.Errorf("%s[%d] cannot be empty", name, i)
		}
		if seen[k] {
			continue
		}
		seen[k] = true
		keys = append(keys, k)
	}
	return keys, nil
}

// Run calls fn for each key in order. Once ctx is done the remaining keys
// are reported as failed without calling fn.
func Run(ctx context.Context, keys []string, fn func(ctx context.Context, key string) (string, error)) Summary {
	results := make([]Result, 0, len(keys))
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			results = append(results, NewErrorResult(key, err))
			continue
		}
		msg, err := fn(ctx, key)
		if err != nil {
			results = append(results, NewErrorResult(key, err))
			continue
		}
		results = append(results, NewSuccessResult(key, msg))
	}
	return Summarize(results)
}

// Summarize counts the outcomes of results.
func Summarize(results []Result) Summary {
	s := Summary{Total: len(results), Results: results}
	for _, r := range results {
		if r.Status == StatusSuccess {
			s.Successful++
		} else {
			s.Failed++
		}
	}
	return s
}

// JSON renders the summary for a tool result.
func (s Summary) JSON() string {
	data, _ := json.MarshalIndent(s, "", "  ")
	return string(data)
}

func NewSuccessResult(key, message string) Result {
	return Result{Key: key, Status: StatusSuccess, Result: message}
}

func NewErrorResult(key string, err error) Result {
	return Result{Key: key, Status: StatusError, Error: err.Error()}
}
