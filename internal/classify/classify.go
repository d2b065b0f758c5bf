package classify

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/joshua-takyi/eventhub/internal/apperr"
)

// Classifier turns an event's text into raw model output, expected to be a JSON object
// keyed by interest name.
type Classifier interface {
	Classify(ctx context.Context, name, description, summary string) (string, error)
}

// Analysis maps interest names to the model's short explanation.
type Analysis map[string]string

// Names returns the interest names in the analysis.
func (a Analysis) Names() []string {
	names := make([]string, 0, len(a))
	for k := range a {
		names = append(names, k)
	}
	return names
}

var fence = regexp.MustCompile("```json\\s*|\\s*```")

// ParseAnalysis strips markdown code fences and decodes the object. Anything that is not
// a string-to-string object is a parse error.
func ParseAnalysis(raw string) (Analysis, error) {
	cleaned := strings.TrimSpace(fence.ReplaceAllString(raw, ""))
	if cleaned == "" {
		return nil, apperr.New(apperr.KindParse, "empty classification response")
	}
	var a Analysis
	if err := json.Unmarshal([]byte(cleaned), &a); err != nil {
		return nil, &apperr.Error{Kind: apperr.KindParse, Message: "malformed classification response", Detail: truncate(cleaned, 200), Err: err}
	}
	if a == nil {
		return nil, apperr.New(apperr.KindParse, "classification response is not an object")
	}
	return a, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
