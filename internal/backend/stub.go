package backend

import (
	"context"
	"regexp"
	"strings"

	"dispatchkernel/internal/config"
)

// StubAnalyzer is the deterministic offline path: fixed keyword and pattern
// heuristics, no network. It keeps the pipeline testable end to end and
// must stay schema-valid for both modes on any input text. The heuristics
// are an externally supplied policy, not language understanding.
type StubAnalyzer struct {
	cfg *config.Settings
}

var (
	agentRE  = regexp.MustCompile(`Agent ([A-Z][a-zA-Z]+)`)
	callerRE = regexp.MustCompile(`Caller ([A-Z][a-zA-Z]+)`)
	timeRE   = regexp.MustCompile(`(\d{1,2}:\d{2}\s?[APMapm]{2}\s?[A-Za-z/]*)`)
)

func (s *StubAnalyzer) Analyze(_ context.Context, mode Mode, text string) (map[string]any, error) {
	if mode == ModeRollup {
		return s.rollup(text), nil
	}
	return s.metadata(text), nil
}

func (s *StubAnalyzer) metadata(text string) map[string]any {
	// Agent matches first, then Caller, dedup by first occurrence.
	participants := []string{}
	seen := map[string]bool{}
	for _, re := range []*regexp.Regexp{agentRE, callerRE} {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			name := strings.TrimSpace(m[1])
			if !seen[name] {
				seen[name] = true
				participants = append(participants, name)
			}
		}
	}

	var callTime any
	if m := timeRE.FindStringSubmatch(text); m != nil {
		callTime = strings.TrimSpace(m[1])
	}

	lower := strings.ToLower(text)
	issues := []string{}
	if strings.Contains(lower, "checkout") {
		issues = append(issues, "Checkout API timeouts")
	}
	if strings.Contains(lower, "config change") {
		issues = append(issues, "Recent config change")
	}

	return map[string]any{
		"summary":       "Caller reported checkout API timeouts impacting customers; rollback is stabilizing while monitoring continues.",
		"participants":  participants,
		"sentiment":     "neutral",
		"call_datetime": callTime,
		"timezone":      s.cfg.DefaultTimezone,
		"action_items":  []string{"Send summary and next steps", "Monitor checkout stability"},
		"issues":        issues,
	}
}

func (s *StubAnalyzer) rollup(text string) map[string]any {
	lower := strings.ToLower(text)
	incidents := []map[string]any{}
	if strings.Contains(lower, "checkout") {
		incidents = append(incidents, map[string]any{
			"type":        "checkout-api",
			"description": "Checkout API is timing out for production customers",
			"severity":    "high",
		})
	}
	if strings.Contains(lower, "config change") {
		incidents = append(incidents, map[string]any{
			"type":        "config-change",
			"description": "Recent payment gateway config change correlated with incident",
			"severity":    "medium",
		})
	}

	return map[string]any{
		"summary":    "Intermittent checkout API failures; rollback underway and monitoring in place.",
		"incidents":  incidents,
		"next_steps": []string{"Confirm rollback completion", "Monitor error rates", "Share customer-facing summary"},
		"status":     "monitoring",
	}
}
