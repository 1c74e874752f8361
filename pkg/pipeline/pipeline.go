package pipeline

import (
	"datacleaner/pkg/engine"
)

// Step is one cleaning operation applied to an engine.
type Step interface {
	Name() string
	Apply(e *engine.Engine) engine.OperationResult
}

type stepFunc struct {
	name string
	fn   func(e *engine.Engine) engine.OperationResult
}

func (s stepFunc) Name() string                                  { return s.name }
func (s stepFunc) Apply(e *engine.Engine) engine.OperationResult { return s.fn(e) }

// NewStep wraps fn as a Step.
func NewStep(name string, fn func(e *engine.Engine) engine.OperationResult) Step {
	return stepFunc{name: name, fn: fn}
}

// Pipeline chains multiple steps.
type Pipeline struct {
	steps []Step
}

func NewPipeline(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

// Steps returns the step names in run order.
func (p *Pipeline) Steps() []string {
	out := make([]string, len(p.steps))
	for i, s := range p.steps {
		out[i] = s.Name()
	}
	return out
}

// Report is the outcome of a pipeline run.
type Report struct {
	Schema  Schema                   `json:"schema"`
	Results []engine.OperationResult `json:"results"`
	Summary engine.Summary           `json:"summary"`
}

// Run applies every step in order to e.
func (p *Pipeline) Run(e *engine.Engine) Report {
	rep := Report{Results: make([]engine.OperationResult, 0, len(p.steps))}
	for _, step := range p.steps {
		rep.Results = append(rep.Results, step.Apply(e))
	}
	rep.Summary = e.Summary()
	rep.Schema = SchemaOf(rep.Summary)
	return rep
}

// Options selects the operations of a one-shot cleaning run.
// The first three mirror the form flags of the legacy /clean endpoint.
// A nil MissingThreshold means engine.DefaultMissingThreshold; 0 is a valid
// threshold that drops every column with a missing cell.
type Options struct {
	RemoveDuplicates   bool
	FillMissing        bool
	DetectOutliers     bool
	FillMethod         engine.FillMethod
	IQRFactor          float64
	DropHighMissing    bool
	MissingThreshold   *float64
	RemoveSpecialChars bool
	ConvertTypes       bool
}

// FromOptions builds the pipeline for o. Text is sanitised and coerced before
// sparse columns are dropped, then rows are deduplicated, gaps filled and
// outliers clipped.
func FromOptions(o Options) *Pipeline {
	if o.FillMethod == "" {
		o.FillMethod = engine.FillMean
	}
	if o.IQRFactor <= 0 {
		o.IQRFactor = engine.DefaultIQRFactor
	}
	threshold := engine.DefaultMissingThreshold
	if o.MissingThreshold != nil {
		threshold = *o.MissingThreshold
	}

	var steps []Step
	if o.RemoveSpecialChars {
		steps = append(steps, NewStep(engine.OpRemoveSpecialChars, (*engine.Engine).RemoveSpecialCharacters))
	}
	if o.ConvertTypes {
		steps = append(steps, NewStep(engine.OpConvertTypes, (*engine.Engine).ConvertDataTypes))
	}
	if o.DropHighMissing {
		steps = append(steps, NewStep(engine.OpDropHighMissing, func(e *engine.Engine) engine.OperationResult {
			return e.DropHighMissingColumns(threshold)
		}))
	}
	if o.RemoveDuplicates {
		steps = append(steps, NewStep(engine.OpRemoveDuplicates, (*engine.Engine).RemoveDuplicates))
	}
	if o.FillMissing {
		steps = append(steps, NewStep(engine.OpFillMissing, func(e *engine.Engine) engine.OperationResult {
			return e.FillMissingValues(o.FillMethod)
		}))
	}
	if o.DetectOutliers {
		steps = append(steps, NewStep(engine.OpClipOutliers, func(e *engine.Engine) engine.OperationResult {
			return e.ClipOutliers(o.IQRFactor)
		}))
	}
	return NewPipeline(steps...)
}
