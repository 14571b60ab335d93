package recorder

import "macross/internal/market"

// NoopRecorder is used when no database path is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordBar(_ market.Bar) error      { return nil }
func (n *NoopRecorder) RecordDecision(_ Decision) error   { return nil }
func (n *NoopRecorder) RecordExecution(_ Execution) error { return nil }
func (n *NoopRecorder) Close() error                      { return nil }
