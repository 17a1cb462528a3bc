package stream

import (
	"testing"

	"github.com/devskill-org/dayahead-planner/action"
	"github.com/devskill-org/dayahead-planner/runner"
)

func TestPublishHourWithNoClientsSucceeds(t *testing.T) {
	h := NewHub()
	h.Start()
	defer h.Stop()

	if err := h.PublishHour(runner.HourlyReport{Hour: 3, Action: action.Idle}); err != nil {
		t.Errorf("publish with no clients should not error: %v", err)
	}
}

func TestPublishHourFailsWhenChannelFull(t *testing.T) {
	h := NewHub() // broadcast loop not started, so the channel fills up
	for i := 0; i < 256; i++ {
		if err := h.PublishHour(runner.HourlyReport{Hour: i % 24}); err != nil {
			t.Fatalf("unexpected error filling channel at %d: %v", i, err)
		}
	}
	if err := h.PublishHour(runner.HourlyReport{Hour: 0}); err == nil {
		t.Error("expected error once broadcast channel is full")
	}
}
