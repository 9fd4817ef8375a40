// Package processor implements the record reconciliation pipeline:
// filter, validate/clean, deduplicate/merge, and email validation.
package processor

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/directory-cli/internal/config"
	"github.com/sells-group/directory-cli/internal/model"
)

// Pipeline stage names reported to the stage hook.
const (
	StageFilter   = "filter"
	StageValidate = "validate"
	StageDedupe   = "dedupe"
	StageEmail    = "email"
)

// StageFunc is called after each pipeline stage with the stage name and the
// number of records remaining. It lets callers report stage counts without
// the core depending on any particular logging mechanism.
type StageFunc func(stage string, count int)

// Option configures a Processor.
type Option func(*Processor)

// WithStageReporter installs a stage-count hook alongside the default log line.
func WithStageReporter(fn StageFunc) Option {
	return func(p *Processor) {
		p.report = fn
	}
}

// Processor runs the reconciliation pipeline. It is stateless between calls,
// performs no I/O, and is safe to re-run on the same input.
type Processor struct {
	emailValidation bool
	report          StageFunc
}

// New creates a Processor from processing configuration.
func New(cfg config.ProcessingConfig, opts ...Option) *Processor {
	p := &Processor{
		emailValidation: cfg.EmailValidation,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process runs the fixed stage sequence: filter (when a filter is supplied),
// validate and clean, deduplicate, then email validation (when enabled).
// Later stages depend on earlier stages' invariants, so the order never
// changes, and every stage runs even on an empty list so stage counts stay
// observable.
//
// A nil record list or nil record element is a caller-contract violation and
// fails loudly; bad scraped data never does.
func (p *Processor) Process(records []*model.Business, filter *model.SearchFilter) ([]*model.Business, error) {
	if records == nil {
		return nil, eris.New("processor: nil record list")
	}
	for i, b := range records {
		if b == nil {
			return nil, eris.Errorf("processor: nil record at index %d", i)
		}
	}

	log := zap.L()
	log.Info("processor: starting", zap.Int("records", len(records)))

	if filter != nil {
		records = ApplyFilter(records, filter)
		p.stage(StageFilter, len(records))
	}

	records = ValidateAndClean(records)
	p.stage(StageValidate, len(records))

	records = Dedupe(records)
	p.stage(StageDedupe, len(records))

	if p.emailValidation {
		records = ValidateEmails(records)
		p.stage(StageEmail, len(records))
	}

	log.Info("processor: complete", zap.Int("records", len(records)))
	return records, nil
}

func (p *Processor) stage(name string, count int) {
	zap.L().Info("processor: stage complete",
		zap.String("stage", name),
		zap.Int("remaining", count),
	)
	if p.report != nil {
		p.report(name, count)
	}
}
