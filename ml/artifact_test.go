package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadArtifactFixtures(t *testing.T) {
	a, err := ReadArtifact("testdata/logistic.json")
	require.NoError(t, err)
	assert.Equal(t, TypeLogisticRegression, a.ModelType)
	assert.Equal(t, "stroke-logreg", a.Name)
	assert.ElementsMatch(t, Columns(), a.Features)

	a, err = ReadArtifact("testdata/tree.json")
	require.NoError(t, err)
	assert.Equal(t, TypeDecisionTree, a.ModelType)
}

func TestReadArtifactRejects(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"renamed column", "testdata/bad_features.json"},
		{"truncated json", "testdata/malformed.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadArtifact(tt.path)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrIncompatibleSchema)
		})
	}
}

func TestReadArtifactMissingFile(t *testing.T) {
	_, err := ReadArtifact("testdata/does-not-exist.json")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrIncompatibleSchema)
}

func TestParseArtifactSchemaViolations(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{
			name: "wrong format version",
			raw:  `{"format_version":2,"model_type":"logistic_regression","features":["age"],"preprocessor":{},"estimator":{"coefficients":[1],"intercept":0}}`,
		},
		{
			name: "unknown model type",
			raw:  `{"format_version":1,"model_type":"svm","features":["age"],"preprocessor":{},"estimator":{}}`,
		},
		{
			name: "logistic without intercept",
			raw:  `{"format_version":1,"model_type":"logistic_regression","features":["age"],"preprocessor":{},"estimator":{"coefficients":[1]}}`,
		},
		{
			name: "tree without nodes",
			raw:  `{"format_version":1,"model_type":"decision_tree","features":["age"],"preprocessor":{},"estimator":{}}`,
		},
		{
			name: "duplicate feature",
			raw:  `{"format_version":1,"model_type":"logistic_regression","features":["age","age"],"preprocessor":{},"estimator":{"coefficients":[1],"intercept":0}}`,
		},
		{
			name: "negative scale",
			raw:  `{"format_version":1,"model_type":"logistic_regression","features":["age"],"preprocessor":{"numeric":[{"name":"age","scale":-1}]},"estimator":{"coefficients":[1],"intercept":0}}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseArtifact([]byte(tt.raw))
			assert.ErrorIs(t, err, ErrIncompatibleSchema)
		})
	}
}

func TestCheckFeatureSet(t *testing.T) {
	require.NoError(t, checkFeatureSet(Columns()))

	reversed := Columns()
	for i, j := 0, len(reversed)-1; i < j; i, j = i+1, j-1 {
		reversed[i], reversed[j] = reversed[j], reversed[i]
	}
	assert.NoError(t, checkFeatureSet(reversed), "order does not matter")

	err := checkFeatureSet(Columns()[1:])
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing age")

	err = checkFeatureSet(append(Columns(), "stroke"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected stroke")
}
