package ml

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// DecisionTree walks a flattened binary tree. Each leaf carries the class
// counts seen during fitting; the probability is the positive share.
type DecisionTree struct {
	info         ModelInfo
	preprocessor *Preprocessor
	nodes        []TreeNode
}

type TreeNode struct {
	FeatureIdx int       `json:"feature_idx"`
	Threshold  float64   `json:"threshold"`
	LeftChild  int       `json:"left_child"`
	RightChild int       `json:"right_child"`
	IsLeaf     bool      `json:"is_leaf"`
	Value      []float64 `json:"value,omitempty"`
}

type treeParams struct {
	Nodes []TreeNode `json:"nodes"`
}

func newDecisionTree(a *Artifact, source string) (*DecisionTree, error) {
	pre, err := NewPreprocessor(a.Preprocessor)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIncompatibleSchema, err)
	}
	var params treeParams
	if err := json.Unmarshal(a.Estimator, &params); err != nil {
		return nil, fmt.Errorf("%w: estimator: %v", ErrIncompatibleSchema, err)
	}
	if err := validateNodes(params.Nodes, pre.Width()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIncompatibleSchema, err)
	}
	return &DecisionTree{
		info:         artifactInfo(a, source),
		preprocessor: pre,
		nodes:        params.Nodes,
	}, nil
}

// validateNodes requires children to sit after their parent, which rules
// out cycles and guarantees every walk terminates.
func validateNodes(nodes []TreeNode, width int) error {
	if len(nodes) == 0 {
		return errors.New("tree has no nodes")
	}
	for i, node := range nodes {
		if node.IsLeaf {
			if len(node.Value) != 2 {
				return fmt.Errorf("leaf %d needs two class counts, has %d", i, len(node.Value))
			}
			if node.Value[0] < 0 || node.Value[1] < 0 || node.Value[0]+node.Value[1] <= 0 {
				return fmt.Errorf("leaf %d has invalid class counts", i)
			}
			continue
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= width {
			return fmt.Errorf("node %d splits on feature %d, vector width is %d", i, node.FeatureIdx, width)
		}
		for _, child := range []int{node.LeftChild, node.RightChild} {
			if child <= i || child >= len(nodes) {
				return fmt.Errorf("node %d has invalid child %d", i, child)
			}
		}
	}
	return nil
}

func (dt *DecisionTree) PredictProba(ctx context.Context, record FeatureRecord) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	x, err := dt.preprocessor.Transform(record)
	if err != nil {
		return 0, err
	}
	return dt.predictVector(x)
}

func (dt *DecisionTree) predictVector(features []float64) (float64, error) {
	if len(dt.nodes) == 0 {
		return 0, errors.New("model not loaded")
	}
	idx := 0
	for {
		node := dt.nodes[idx]
		if node.IsLeaf {
			return node.Value[1] / (node.Value[0] + node.Value[1]), nil
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
	}
}

func (dt *DecisionTree) Info() ModelInfo { return dt.info }

func (dt *DecisionTree) Close() error { return nil }
