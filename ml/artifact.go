package ml

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Artifact is the on-disk form of an exported model: the fitted
// preprocessing steps plus the estimator parameters.
type Artifact struct {
	FormatVersion int              `json:"format_version"`
	Name          string           `json:"name,omitempty"`
	Version       string           `json:"version,omitempty"`
	ModelType     string           `json:"model_type"`
	Features      []string         `json:"features"`
	Preprocessor  PreprocessorSpec `json:"preprocessor"`
	Estimator     json.RawMessage  `json:"estimator"`
}

type PreprocessorSpec struct {
	Numeric     []NumericStep     `json:"numeric"`
	Categorical []CategoricalStep `json:"categorical"`
}

// NumericStep standardises one column as (v-mean)/scale.
type NumericStep struct {
	Name  string  `json:"name"`
	Mean  float64 `json:"mean"`
	Scale float64 `json:"scale,omitempty"`
}

// CategoricalStep one-hot encodes one column over a fixed category list.
type CategoricalStep struct {
	Name       string   `json:"name"`
	Categories []string `json:"categories"`
}

// ReadArtifact loads an artifact file and checks it against the schema and
// the feature record layout.
func ReadArtifact(path string) (*Artifact, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact %s: %w", path, err)
	}
	return ParseArtifact(raw)
}

func ParseArtifact(raw []byte) (*Artifact, error) {
	if err := validateArtifactJSON(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIncompatibleSchema, err)
	}
	var a Artifact
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIncompatibleSchema, err)
	}
	if err := checkFeatureSet(a.Features); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIncompatibleSchema, err)
	}
	return &a, nil
}

// checkFeatureSet requires the artifact to name exactly the record columns.
func checkFeatureSet(features []string) error {
	want := make(map[string]bool, len(Columns()))
	for _, c := range Columns() {
		want[c] = false
	}
	var unknown []string
	for _, f := range features {
		seen, ok := want[f]
		if !ok {
			unknown = append(unknown, f)
			continue
		}
		if seen {
			return fmt.Errorf("duplicate feature %q", f)
		}
		want[f] = true
	}
	var missing []string
	for c, seen := range want {
		if !seen {
			missing = append(missing, c)
		}
	}
	if len(unknown) == 0 && len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	var parts []string
	if len(missing) > 0 {
		parts = append(parts, "missing "+strings.Join(missing, ", "))
	}
	if len(unknown) > 0 {
		parts = append(parts, "unexpected "+strings.Join(unknown, ", "))
	}
	return fmt.Errorf("feature set mismatch: %s", strings.Join(parts, "; "))
}
