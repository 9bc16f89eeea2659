package tui

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// lastState remembers which config was browsed last so the next launch can
// reopen it. UI convenience only; records themselves are never persisted.
type lastState struct {
	ConfigID string    `json:"config_id"`
	OpenedAt time.Time `json:"opened_at"`
}

var stateFile = defaultStateFile()

func defaultStateFile() string {
	cfg, _ := os.UserConfigDir()
	return filepath.Join(cfg, "machimap", "state.json")
}

func LoadLastConfig() string {
	data, err := os.ReadFile(stateFile)
	if err != nil {
		return ""
	}
	var st lastState
	if err := json.Unmarshal(data, &st); err != nil {
		return ""
	}
	return st.ConfigID
}

func SaveLastConfig(configID string) error {
	data, err := json.MarshalIndent(lastState{ConfigID: configID, OpenedAt: time.Now()}, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(stateFile), 0755); err != nil {
		return err
	}
	return os.WriteFile(stateFile, data, 0644)
}
