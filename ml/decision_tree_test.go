package ml

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixtureTree(t *testing.T) *DecisionTree {
	t.Helper()
	a, err := ReadArtifact("testdata/tree.json")
	require.NoError(t, err)
	tree, err := newDecisionTree(a, "testdata/tree.json")
	require.NoError(t, err)
	return tree
}

func TestDecisionTreePredictProba(t *testing.T) {
	tree := loadFixtureTree(t)

	tests := []struct {
		name    string
		age     int
		glucose float64
		want    float64
	}{
		{"young normal glucose", 50, 100, 20.0 / 980.0},
		{"split threshold goes left", 50, 150, 20.0 / 980.0},
		{"young high glucose", 50, 200, 12.0 / 97.0},
		{"older", 70, 100, 0.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := sampleRecord()
			r.Age = tt.age
			r.AvgGlucoseLevel = tt.glucose
			p, err := tree.PredictProba(context.Background(), r)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, p, 1e-12)
		})
	}
}

func TestValidateNodes(t *testing.T) {
	leaf := TreeNode{FeatureIdx: -1, LeftChild: -1, RightChild: -1, IsLeaf: true, Value: []float64{1, 1}}
	tests := []struct {
		name  string
		nodes []TreeNode
		ok    bool
	}{
		{"single leaf", []TreeNode{leaf}, true},
		{"empty", nil, false},
		{"self loop", []TreeNode{{FeatureIdx: 0, LeftChild: 0, RightChild: 1}, leaf}, false},
		{"child out of range", []TreeNode{{FeatureIdx: 0, LeftChild: 1, RightChild: 5}, leaf}, false},
		{"feature out of range", []TreeNode{{FeatureIdx: 99, LeftChild: 1, RightChild: 2}, leaf, leaf}, false},
		{"leaf without counts", []TreeNode{{IsLeaf: true}}, false},
		{"leaf with zero weight", []TreeNode{{IsLeaf: true, Value: []float64{0, 0}}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateNodes(tt.nodes, 22)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}
