package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"riskengine/ml"
	"riskengine/risk"
)

const treeArtifact = "../ml/testdata/tree.json"

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	base := []string{"--config", filepath.Join(t.TempDir(), "absent.yaml")}
	cmd.SetArgs(append(base, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestScoreDefaults(t *testing.T) {
	out, _, err := run(t, "score", "--model", treeArtifact, "--model-type", "decision_tree")
	require.NoError(t, err)

	// age 50, glucose 100 lands in the [960, 20] leaf
	assert.Contains(t, out, risk.Title)
	assert.Contains(t, out, "Model: decision_tree stroke-tree 2024.1")
	assert.Contains(t, out, risk.ProbabilityLabel+": 2.04%")
	assert.Contains(t, out, "Risk Tier: Low")
	assert.Contains(t, out, risk.NotFlaggedBanner)
	assert.Contains(t, out, risk.ThresholdLabel+": 0.50")
	assert.Contains(t, out, risk.CostRatioLabel+": 2")
	assert.Contains(t, out, risk.Disclaimer)
}

func TestScoreFlags(t *testing.T) {
	out, _, err := run(t, "score",
		"--model", treeArtifact, "--model-type", "decision_tree",
		"--age", "72", "--threshold", "0.25", "--cost-ratio", "10")
	require.NoError(t, err)

	assert.Contains(t, out, risk.ProbabilityLabel+": 30.00%")
	assert.Contains(t, out, "Risk Tier: High")
	assert.Contains(t, out, risk.FlaggedBanner)
	assert.Contains(t, out, risk.CostRatioLabel+": 10")
}

func TestScoreJSON(t *testing.T) {
	out, _, err := run(t, "score",
		"--model", treeArtifact, "--model-type", "decision_tree",
		"--glucose", "200", "--smoking-status", "smokes", "--json")
	require.NoError(t, err)

	var got scoreOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.InDelta(t, 12.0/97.0, got.Probability, 1e-9)
	assert.Equal(t, "12.37%", got.Display)
	assert.Equal(t, risk.TierModerate, got.Tier)
	assert.False(t, got.Flagged)
	assert.Equal(t, "smokes", got.Record.SmokingStatus)
	assert.Equal(t, "Male", got.Record.Gender)
	assert.Equal(t, 0, got.Record.BMIMissing)
}

func TestScoreRejectsOutOfDomainInput(t *testing.T) {
	tests := []struct {
		flag, value, field string
	}{
		{"--work-type", "Astronaut", "work_type"},
		{"--age", "101", "age"},
		{"--cost-ratio", "3", "cost_ratio"},
		{"--threshold", "1.2", "threshold"},
		{"--glucose", "inf", "avg_glucose_level"},
	}
	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			out, _, err := run(t, "score", "--model", treeArtifact, "--model-type", "decision_tree", tt.flag, tt.value)

			var verr risk.ValidationError
			require.True(t, errors.As(err, &verr))
			require.Len(t, verr, 1)
			assert.Equal(t, tt.field, verr[0].Field)
			assert.Empty(t, out)
		})
	}
}

func TestValidate(t *testing.T) {
	out, _, err := run(t, "validate", "--model", treeArtifact, "--model-type", "decision_tree")
	require.NoError(t, err)
	assert.Contains(t, out, "type:     decision_tree")
	assert.Contains(t, out, "name:     stroke-tree")
	assert.Contains(t, out, "Residence_type")
	assert.Contains(t, out, "artifact OK")
}

func TestValidateFailures(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want error
	}{
		{"absent artifact", []string{"--model", filepath.Join(t.TempDir(), "model.json")}, nil},
		{"renamed feature", []string{"--model", "../ml/testdata/bad_features.json"}, ml.ErrIncompatibleSchema},
		{"type mismatch", []string{"--model", treeArtifact, "--model-type", "logistic_regression"}, ml.ErrIncompatibleSchema},
		{"unknown type", []string{"--model", treeArtifact, "--model-type", "svm"}, ml.ErrUnsupportedModelType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := run(t, append([]string{"validate"}, tt.args...)...)
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
			assert.NotContains(t, out, "artifact OK")
		})
	}
}

func TestUnknownLogLevel(t *testing.T) {
	_, _, err := run(t, "validate", "--model", treeArtifact, "--model-type", "decision_tree", "--log-level", "loud")
	require.Error(t, err)
}
