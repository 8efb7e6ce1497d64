package devops

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadPolicyFile(t *testing.T) {
	yaml := `holidays:
  - "2026-01-01"
  - "2026-01-26"
goal_hours: 7.6
future_skew_minutes: 10
pending_after_hours: 12
`
	path := filepath.Join(t.TempDir(), "policy.yaml")
	assert.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	cfg, err := LoadPolicyFile(path)
	assert.NoError(t, err)
	assert.Equal(t, []string{"2026-01-01", "2026-01-26"}, cfg.Holidays)
	assert.Equal(t, 7.6, cfg.GoalHours)

	engine := cfg.EngineConfig()
	assert.Equal(t, 10*time.Minute, engine.FutureSkew)
	assert.Equal(t, 12*time.Hour, engine.PendingAfter)
	assert.Equal(t, 7.6, engine.GoalHours)
	assert.True(t, engine.Holidays.Contains(time.Date(2026, 1, 26, 9, 0, 0, 0, time.UTC)))
	assert.False(t, engine.Holidays.Contains(time.Date(2026, 1, 27, 9, 0, 0, 0, time.UTC)))
}

func TestLoadPolicyFileMissing(t *testing.T) {
	_, err := LoadPolicyFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
