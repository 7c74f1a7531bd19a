package recorder

import "github.com/DihyahAdib/ORBS-Trading-bot/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRange(_ model.OpeningRange) error    { return nil }
func (n *NoopRecorder) RecordSignal(_ model.BreakoutSignal) error { return nil }
func (n *NoopRecorder) Close() error                              { return nil }
