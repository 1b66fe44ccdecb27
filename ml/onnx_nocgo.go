//go:build !cgo

package ml

import "fmt"

func newOnnxScorer(a *Artifact, source, libraryPath string) (Scorer, error) {
	return nil, fmt.Errorf("%w: onnx requires a cgo build", ErrUnsupportedModelType)
}
