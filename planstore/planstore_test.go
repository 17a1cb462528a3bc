package planstore

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/devskill-org/dayahead-planner/action"
	"github.com/devskill-org/dayahead-planner/runner"
)

// TestSaveAndLoadPlanRoundTrip exercises the store against a live Postgres
// instance, following the teacher's convention of skipping persistence tests
// when no test database is configured.
func TestSaveAndLoadPlanRoundTrip(t *testing.T) {
	connString := os.Getenv("TEST_POSTGRES_CONN")
	if connString == "" {
		t.Skip("skipping: TEST_POSTGRES_CONN not set")
	}

	store, err := Open(connString)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer store.Close()

	var result runner.SimulationResult
	for h := 0; h < 24; h++ {
		result.Hourly[h] = runner.HourlyReport{Hour: h, Action: action.Idle, Price: 5.0}
	}

	day := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)
	ctx := context.Background()
	if err := store.SavePlan(ctx, day, runner.RuleMode, result); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := store.LoadPlan(ctx, day, runner.RuleMode)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 24 {
		t.Fatalf("loaded %d hours, want 24", len(loaded))
	}
	if loaded[5].Action != action.Idle {
		t.Errorf("hour 5 action = %v, want Idle", loaded[5].Action)
	}
}
