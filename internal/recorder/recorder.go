package recorder

import "NepseHarvest/internal/model"

// Recorder persists harvest run history for later inspection.
type Recorder interface {
	RecordRun(summary *model.RunSummary) error
	Close() error
}
