package recorder

import "github.com/DihyahAdib/ORBS-Trading-bot/internal/model"

// Recorder persists computed ranges and fired signals for later inspection.
type Recorder interface {
	RecordRange(r model.OpeningRange) error
	RecordSignal(sig model.BreakoutSignal) error
	Close() error
}
