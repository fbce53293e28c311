package observability

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"pgregory.net/rapid"
)

var communicationTypes = []string{"Email", "Phone Call", "Meeting", "LinkedIn Post", "LinkedIn Message", "Other"}

// Every logged or completed communication is counted exactly once in ByType,
// and the success rate stays within 0..100.
func TestProperty_MetricsByTypeMatchesOutcomes(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		el, err := NewJSONLEventLog(filepath.Join(t.TempDir(), EventLogFileName))
		if err != nil {
			t.Fatalf("creating event log: %v", err)
		}
		defer el.Close()

		n := rapid.IntRange(1, 20).Draw(rt, "n")
		base := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
		wantByType := map[string]int{}
		wantSuccess := 0

		for i := 0; i < n; i++ {
			kind := rapid.SampledFrom([]string{"communication.logged", "communication.completed"}).Draw(rt, fmt.Sprintf("kind_%d", i))
			typ := rapid.SampledFrom(communicationTypes).Draw(rt, fmt.Sprintf("type_%d", i))
			ok := rapid.Bool().Draw(rt, fmt.Sprintf("ok_%d", i))
			wantByType[typ]++
			if ok {
				wantSuccess++
			}
			event := Event{
				Time:    base.Add(time.Duration(i) * time.Minute),
				Level:   "INFO",
				Type:    kind,
				Message: kind,
				Data:    map[string]any{"type": typ, "successful": ok},
			}
			if err := el.Write(event); err != nil {
				t.Fatalf("writing event: %v", err)
			}
		}

		m, err := NewMetricsCalculator(el).Calculate(base.Add(-time.Hour))
		if err != nil {
			t.Fatalf("calculating metrics: %v", err)
		}

		total := 0
		for typ, want := range wantByType {
			if m.ByType[typ] != want {
				rt.Errorf("ByType[%q] = %d, want %d", typ, m.ByType[typ], want)
			}
			total += m.ByType[typ]
		}
		if total != m.CommunicationsLogged+m.CommunicationsCompleted {
			rt.Errorf("ByType sum %d != logged+completed %d", total, m.CommunicationsLogged+m.CommunicationsCompleted)
		}
		if m.SuccessfulOutcomes != wantSuccess {
			rt.Errorf("SuccessfulOutcomes = %d, want %d", m.SuccessfulOutcomes, wantSuccess)
		}
		if m.SuccessRate < 0 || m.SuccessRate > 100 {
			rt.Errorf("SuccessRate = %v, want within [0, 100]", m.SuccessRate)
		}
	})
}

// EventCount equals the number of events written regardless of their types.
func TestProperty_MetricsEventCountIsTotal(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		el, err := NewJSONLEventLog(filepath.Join(t.TempDir(), EventLogFileName))
		if err != nil {
			t.Fatalf("creating event log: %v", err)
		}
		defer el.Close()

		n := rapid.IntRange(1, 20).Draw(rt, "n")
		base := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
		eventTypes := []string{
			"company.added",
			"company.updated",
			"company.deleted",
			"communication.logged",
			"communication.scheduled",
			"communication.completed",
			"method.reordered",
		}

		for i := 0; i < n; i++ {
			eventType := rapid.SampledFrom(eventTypes).Draw(rt, fmt.Sprintf("eventType_%d", i))
			hoursOffset := rapid.IntRange(0, 168).Draw(rt, fmt.Sprintf("hoursOffset_%d", i))
			event := Event{
				Time:    base.Add(time.Duration(hoursOffset) * time.Hour),
				Level:   "INFO",
				Type:    eventType,
				Message: eventType,
				Data:    map[string]any{"company_id": fmt.Sprintf("c%d", i)},
			}
			if err := el.Write(event); err != nil {
				t.Fatalf("writing event: %v", err)
			}
		}

		m, err := NewMetricsCalculator(el).Calculate(base.Add(-time.Hour))
		if err != nil {
			t.Fatalf("calculating metrics: %v", err)
		}
		if m.EventCount != n {
			rt.Errorf("EventCount = %d, want %d", m.EventCount, n)
		}
	})
}
