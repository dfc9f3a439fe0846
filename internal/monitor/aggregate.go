package monitor

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

const statusFileSuffix = "_status.json"

// LoadAll reads the monitoring state of every tracked bot from dir,
// in filename order. Files that cannot be read or parsed are skipped
// with a warning; a missing directory yields an empty result.
func LoadAll(logger zerolog.Logger, dir string) []State {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn().Err(err).Str("dir", dir).Msg("could not read monitoring directory")
		}
		return []State{}
	}

	states := make([]State, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), statusFileSuffix) {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			logger.Warn().Err(err).Str("file", path).Msg("could not read monitoring file")
			continue
		}

		// A document must be a JSON object; literals like null or
		// arrays would otherwise decode into an empty State.
		var doc map[string]json.RawMessage
		if err := json.Unmarshal(data, &doc); err != nil || doc == nil {
			logger.Warn().Err(err).Str("file", path).Msg("monitoring file is not a JSON object")
			continue
		}

		var state State
		if err := json.Unmarshal(data, &state); err != nil {
			logger.Warn().Err(err).Str("file", path).Msg("could not parse monitoring file")
			continue
		}
		states = append(states, state)
	}
	return states
}
