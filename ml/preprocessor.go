package ml

import (
	"errors"
	"fmt"
)

// Preprocessor turns a FeatureRecord into the dense vector the estimator
// was fitted on. Numeric columns come first in artifact order, followed by
// the one-hot blocks of the categorical columns.
type Preprocessor struct {
	numeric     []NumericStep
	categorical []CategoricalStep
	index       []map[string]int
	width       int
}

func NewPreprocessor(spec PreprocessorSpec) (*Preprocessor, error) {
	covered := make(map[string]bool)
	p := &Preprocessor{}

	for _, step := range spec.Numeric {
		if !isNumericColumn(step.Name) {
			return nil, fmt.Errorf("numeric step for non-numeric column %q", step.Name)
		}
		if covered[step.Name] {
			return nil, fmt.Errorf("column %q has more than one step", step.Name)
		}
		covered[step.Name] = true
		if step.Scale == 0 {
			step.Scale = 1
		}
		if step.Scale < 0 {
			return nil, fmt.Errorf("column %q has negative scale", step.Name)
		}
		p.numeric = append(p.numeric, step)
	}

	for _, step := range spec.Categorical {
		if !isCategoricalColumn(step.Name) {
			return nil, fmt.Errorf("categorical step for non-categorical column %q", step.Name)
		}
		if covered[step.Name] {
			return nil, fmt.Errorf("column %q has more than one step", step.Name)
		}
		covered[step.Name] = true
		if len(step.Categories) == 0 {
			return nil, fmt.Errorf("column %q has no categories", step.Name)
		}
		idx := make(map[string]int, len(step.Categories))
		for i, c := range step.Categories {
			if _, dup := idx[c]; dup {
				return nil, fmt.Errorf("column %q repeats category %q", step.Name, c)
			}
			idx[c] = i
		}
		p.categorical = append(p.categorical, step)
		p.index = append(p.index, idx)
	}

	for _, c := range Columns() {
		if !covered[c] {
			return nil, fmt.Errorf("column %q has no preprocessing step", c)
		}
	}

	p.width = len(p.numeric)
	for _, step := range p.categorical {
		p.width += len(step.Categories)
	}
	return p, nil
}

// Width is the length of every vector Transform returns.
func (p *Preprocessor) Width() int {
	return p.width
}

// FeatureNames names each vector position, e.g. "age" or "work_type=Private".
func (p *Preprocessor) FeatureNames() []string {
	names := make([]string, 0, p.width)
	for _, step := range p.numeric {
		names = append(names, step.Name)
	}
	for _, step := range p.categorical {
		for _, c := range step.Categories {
			names = append(names, step.Name+"="+c)
		}
	}
	return names
}

// Transform encodes a record. Categories unseen during fitting encode as
// an all-zero block.
func (p *Preprocessor) Transform(record FeatureRecord) ([]float64, error) {
	if p == nil {
		return nil, errors.New("preprocessor not initialised")
	}
	out := make([]float64, p.width)
	for i, step := range p.numeric {
		v, ok := record.Numeric(step.Name)
		if !ok {
			return nil, fmt.Errorf("record has no numeric column %q", step.Name)
		}
		out[i] = (v - step.Mean) / step.Scale
	}
	offset := len(p.numeric)
	for i, step := range p.categorical {
		v, ok := record.Categorical(step.Name)
		if !ok {
			return nil, fmt.Errorf("record has no categorical column %q", step.Name)
		}
		if pos, known := p.index[i][v]; known {
			out[offset+pos] = 1
		}
		offset += len(step.Categories)
	}
	return out, nil
}
