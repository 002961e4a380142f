package assist

import (
	"context"
	"fmt"
	"time"
)

// Demo scenario states, advanced only by the named actions below. The
// scripts play both sides of the conversation so the walkthrough is
// identical on every run.
const (
	demoStateInitial        = "initial"
	demoStateAnalysis       = "analysis"
	demoStateSources        = "sources"
	demoStateOrders         = "orders"
	demoStateOrdersApproved = "ordersApproved"
	demoStateComplete       = "complete"
)

// scriptLine is one canned message plus the pause played before it.
type scriptLine struct {
	role    string
	content string
	delay   time.Duration
	actions []ChatAction
}

// Step is the result of advancing a scenario.
type Step struct {
	Next     string
	Messages []ChatMessage
}

// DemoEngine plays scripted assistant walkthroughs. It keeps no state of
// its own; callers pass back the state they last received.
type DemoEngine struct {
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration)
}

func NewDemoEngine() *DemoEngine {
	return &DemoEngine{
		now: time.Now,
		sleep: func(ctx context.Context, d time.Duration) {
			t := time.NewTimer(d)
			defer t.Stop()
			select {
			case <-ctx.Done():
			case <-t.C:
			}
		},
	}
}

// day2AutoAdvance names the transition the engine plays by itself after a
// state is entered. The analysis rolls straight into the sources exchange
// without waiting for the clinician.
var day2AutoAdvance = map[string]string{
	demoStateAnalysis: "sourcesQuestion",
}

// Advance plays the script for one transition, chaining through any
// automatic follow-ons, and returns the messages plus the final state.
// Unknown scenarios, states, and actions are rejected, as is any action once
// the scenario has completed.
func (e *DemoEngine) Advance(ctx context.Context, scenario, state, action string) (Step, error) {
	if scenario != "day2" {
		return Step{}, fmt.Errorf("unknown scenario: %s", scenario)
	}
	if state == "" {
		state = demoStateInitial
	}
	if state == demoStateComplete {
		return Step{}, fmt.Errorf("scenario already complete")
	}

	var step Step
	for {
		next, lines, err := day2Transition(state, action)
		if err != nil {
			return Step{}, err
		}
		for i, line := range lines {
			e.sleep(ctx, line.delay)
			if ctx.Err() != nil {
				return Step{}, ctx.Err()
			}
			step.Messages = append(step.Messages, ChatMessage{
				ID:        fmt.Sprintf("demo-day2-%s-%d", action, i),
				Role:      line.role,
				Content:   line.content,
				Timestamp: e.now(),
				Actions:   line.actions,
			})
		}
		step.Next = next
		follow, ok := day2AutoAdvance[next]
		if !ok {
			return step, nil
		}
		state, action = next, follow
	}
}

func day2Transition(state, action string) (string, []scriptLine, error) {
	switch {
	case state == demoStateInitial && action == "showDay2Analysis":
		return demoStateAnalysis, []scriptLine{
			{
				role:    "alis",
				delay:   1500 * time.Millisecond,
				content: "Good morning. I've reviewed Marie Dupont's overnight data. Her lactate came down from 3.1 to 1.8 mmol/L and she has been afebrile since 02:00, which suggests the sepsis is responding to the current antibiotic regimen.",
			},
			{
				role:    "alis",
				delay:   2500 * time.Millisecond,
				content: "Two things need attention today: her creatinine rose from 1.1 to 1.4 mg/dL, so I'd recommend holding this morning's lisinopril dose, and her repeat blood cultures from yesterday are still pending. I can stage a renal function panel and a medication hold for your review.",
			},
		}, nil
	case state == demoStateAnalysis && action == "sourcesQuestion":
		return demoStateSources, []scriptLine{
			{
				role:    "user",
				delay:   500 * time.Millisecond,
				content: "What is this based on?",
			},
			{
				role:    "alis",
				delay:   2 * time.Second,
				content: "The lactate trend comes from the 22:14 and 05:46 lab draws. The creatinine rise is from this morning's basic metabolic panel compared against admission baseline. The lisinopril recommendation follows the nephrotoxic-agent review triggered whenever creatinine rises more than 0.3 mg/dL in 48 hours. All three are in her chart under Labs and Medications.",
				actions: []ChatAction{
					{Label: "Stage the orders", Action: "stageOrders", Primary: true},
				},
			},
		}, nil
	case (state == demoStateAnalysis || state == demoStateSources) && action == "stageOrders":
		return demoStateOrders, []scriptLine{
			{
				role:    "user",
				delay:   500 * time.Millisecond,
				content: "Go ahead and stage those orders.",
			},
			{
				role:    "alis",
				delay:   2200 * time.Millisecond,
				content: "Done. I've staged two items for your signature: a renal function panel (priority Today) and a hold on lisinopril 10 mg pending renal recovery. Neither is active until you sign.",
				actions: []ChatAction{
					{Label: "Approve orders", Action: "approveOrders", Primary: true},
					{Label: "Dismiss", Action: "dismissOrders"},
				},
			},
		}, nil
	case state == demoStateOrders && action == "approveOrders":
		return demoStateOrdersApproved, []scriptLine{
			{
				role:    "user",
				delay:   500 * time.Millisecond,
				content: "Approved, sign both.",
			},
			{
				role:    "alis",
				delay:   1500 * time.Millisecond,
				content: "Both orders are signed and active. Lab will draw the renal panel with the 10:00 rounds. I can draft today's progress note summarizing the overnight course and this morning's plan whenever you're ready.",
				actions: []ChatAction{
					{Label: "Draft progress note", Action: "noteSigned", Primary: true},
				},
			},
		}, nil
	case state == demoStateOrdersApproved && action == "noteSigned":
		return demoStateComplete, []scriptLine{
			{
				role:    "alis",
				delay:   1800 * time.Millisecond,
				content: "The progress note is signed and filed to her chart. That closes out the morning review for Marie Dupont. I'll flag you when the pending blood cultures result.",
			},
		}, nil
	default:
		return "", nil, fmt.Errorf("invalid action %q in state %q", action, state)
	}
}
