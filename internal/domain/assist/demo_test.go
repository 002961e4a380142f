package assist

import (
	"context"
	"reflect"
	"testing"
	"time"
)

func newTestEngine() (*DemoEngine, *[]time.Duration) {
	var slept []time.Duration
	e := NewDemoEngine()
	e.now = func() time.Time { return time.Date(2026, 3, 14, 7, 30, 0, 0, time.UTC) }
	e.sleep = func(ctx context.Context, d time.Duration) { slept = append(slept, d) }
	return e, &slept
}

func TestDay2AnalysisRollsIntoSources(t *testing.T) {
	e, _ := newTestEngine()

	step, err := e.Advance(context.Background(), "day2", "initial", "showDay2Analysis")
	if err != nil {
		t.Fatal(err)
	}

	if step.Next != demoStateSources {
		t.Fatalf("expected state %q after the analysis, got %q", demoStateSources, step.Next)
	}
	if len(step.Messages) != 4 {
		t.Fatalf("expected two analysis messages plus the sources exchange, got %d messages", len(step.Messages))
	}
	for i, role := range []string{"alis", "alis", "user", "alis"} {
		if step.Messages[i].Role != role {
			t.Fatalf("message %d has role %q, want %q", i, step.Messages[i].Role, role)
		}
	}
	if len(step.Messages[3].Actions) == 0 {
		t.Fatal("sources answer carries no follow-up actions")
	}
}

func TestDay2AnalysisIsDeterministic(t *testing.T) {
	e, _ := newTestEngine()

	first, err := e.Advance(context.Background(), "day2", "", "showDay2Analysis")
	if err != nil {
		t.Fatal(err)
	}
	second, err := e.Advance(context.Background(), "day2", "initial", "showDay2Analysis")
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Fatal("same transition produced different output on replay")
	}
}

func TestDay2PacingDelays(t *testing.T) {
	e, slept := newTestEngine()

	if _, err := e.Advance(context.Background(), "day2", "initial", "showDay2Analysis"); err != nil {
		t.Fatal(err)
	}
	want := []time.Duration{
		1500 * time.Millisecond,
		2500 * time.Millisecond,
		500 * time.Millisecond,
		2 * time.Second,
	}
	if !reflect.DeepEqual(*slept, want) {
		t.Fatalf("analysis pacing = %v, want %v", *slept, want)
	}
}

func TestDay2FullWalkthrough(t *testing.T) {
	e, _ := newTestEngine()
	ctx := context.Background()

	state := ""
	for _, step := range []struct {
		action string
		next   string
	}{
		{"showDay2Analysis", demoStateSources},
		{"stageOrders", demoStateOrders},
		{"approveOrders", demoStateOrdersApproved},
		{"noteSigned", demoStateComplete},
	} {
		res, err := e.Advance(ctx, "day2", state, step.action)
		if err != nil {
			t.Fatalf("action %q in state %q: %v", step.action, state, err)
		}
		if res.Next != step.next {
			t.Fatalf("action %q moved to %q, want %q", step.action, res.Next, step.next)
		}
		if len(res.Messages) == 0 {
			t.Fatalf("action %q produced no messages", step.action)
		}
		state = res.Next
	}

	if _, err := e.Advance(ctx, "day2", state, "showDay2Analysis"); err == nil {
		t.Fatal("completed scenario accepted another action")
	}
}

func TestDemoRejectsUnknownScenarioAndAction(t *testing.T) {
	e, _ := newTestEngine()
	if _, err := e.Advance(context.Background(), "day99", "", "showDay2Analysis"); err == nil {
		t.Fatal("unknown scenario accepted")
	}
	if _, err := e.Advance(context.Background(), "day2", "initial", "approveOrders"); err == nil {
		t.Fatal("out-of-order action accepted")
	}
}
