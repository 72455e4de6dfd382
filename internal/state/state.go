package state

import (
	"encoding/json"
	"os"
	"time"
)

// HarvestState carries bookkeeping across runs: when the harvester last
// succeeded and what it produced.
type HarvestState struct {
	LastRunAt    time.Time `json:"last_run_at"`
	LastOutput   string    `json:"last_output"`
	LastRecords  int       `json:"last_records"`
	TotalRuns    int       `json:"total_runs"`
	TotalRecords int       `json:"total_records"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// LoadState reads the state from a JSON file. Returns a zero state if the file doesn't exist.
func LoadState(filePath string) (*HarvestState, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &HarvestState{}, nil
		}
		return nil, err
	}
	var s HarvestState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// SaveState writes the state to a JSON file.
func SaveState(filePath string, s *HarvestState) error {
	s.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filePath, data, 0644)
}
