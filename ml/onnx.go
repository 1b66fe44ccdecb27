//go:build cgo

package ml

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"sync"

	ort "github.com/yalue/onnxruntime_go"
)

type onnxParams struct {
	Path   string `json:"path"`
	Input  string `json:"input"`
	Output string `json:"output"`
}

var ortInitMu sync.Mutex

func initOnnxRuntime(libraryPath string) error {
	ortInitMu.Lock()
	defer ortInitMu.Unlock()
	if ort.IsInitialized() {
		return nil
	}
	if libraryPath != "" {
		ort.SetSharedLibraryPath(libraryPath)
	}
	if err := ort.InitializeEnvironment(); err != nil {
		return fmt.Errorf("initialize onnxruntime: %w", err)
	}
	return nil
}

// OnnxScorer runs an exported estimator graph. Its input is the
// preprocessed [1, width] vector, never raw columns, and its output is the
// [1,2] probability tensor. The session binds fixed tensors, so runs are
// serialised.
type OnnxScorer struct {
	info         ModelInfo
	preprocessor *Preprocessor

	mu      sync.Mutex
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
	session *ort.AdvancedSession
}

func newOnnxScorer(a *Artifact, source, libraryPath string) (Scorer, error) {
	pre, err := NewPreprocessor(a.Preprocessor)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIncompatibleSchema, err)
	}
	var params onnxParams
	if err := json.Unmarshal(a.Estimator, &params); err != nil {
		return nil, fmt.Errorf("%w: estimator: %v", ErrIncompatibleSchema, err)
	}
	graph := params.Path
	if !filepath.IsAbs(graph) {
		graph = filepath.Join(filepath.Dir(source), graph)
	}

	if err := initOnnxRuntime(libraryPath); err != nil {
		return nil, err
	}

	input, err := ort.NewTensor(ort.NewShape(1, int64(pre.Width())), make([]float32, pre.Width()))
	if err != nil {
		return nil, fmt.Errorf("create input tensor: %w", err)
	}
	output, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 2))
	if err != nil {
		input.Destroy()
		return nil, fmt.Errorf("create output tensor: %w", err)
	}
	session, err := ort.NewAdvancedSession(graph,
		[]string{params.Input}, []string{params.Output},
		[]ort.Value{input}, []ort.Value{output}, nil)
	if err != nil {
		input.Destroy()
		output.Destroy()
		return nil, fmt.Errorf("%w: open onnx graph %s: %v", ErrIncompatibleSchema, graph, err)
	}

	return &OnnxScorer{
		info:         artifactInfo(a, source),
		preprocessor: pre,
		input:        input,
		output:       output,
		session:      session,
	}, nil
}

func (s *OnnxScorer) PredictProba(ctx context.Context, record FeatureRecord) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	x, err := s.preprocessor.Transform(record)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return 0, fmt.Errorf("onnx session closed")
	}
	data := s.input.GetData()
	for i, v := range x {
		data[i] = float32(v)
	}
	if err := s.session.Run(); err != nil {
		return 0, fmt.Errorf("onnx run: %w", err)
	}
	p := float64(s.output.GetData()[1])
	if math.IsNaN(p) {
		return 0, ErrInvalidProbability
	}
	return p, nil
}

func (s *OnnxScorer) Info() ModelInfo { return s.info }

func (s *OnnxScorer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return nil
	}
	err := s.session.Destroy()
	s.input.Destroy()
	s.output.Destroy()
	s.session = nil
	return err
}
