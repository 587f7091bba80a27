package watcher

import (
	"fmt"
	"sort"
	"time"

	"github.com/dhirajnair/pspec/internal/review"
)

// Compare detects notable changes between two watch states and returns
// alerts, critical first. Items are matched by kind, rule id and line, so
// moving code around reports the old position resolved and the new one
// appeared.
func Compare(prev, curr *WatchState) []Alert {
	var alerts []Alert

	alerts = append(alerts, compareAppeared(prev, curr)...)
	alerts = append(alerts, compareInfo(prev, curr)...)

	sort.SliceStable(alerts, func(i, j int) bool {
		return levelRank(alerts[i].Level) > levelRank(alerts[j].Level)
	})
	return alerts
}

func levelRank(level string) int {
	switch level {
	case "critical":
		return 2
	case "warning":
		return 1
	}
	return 0
}

// appearedLevel grades a new item: warnings and violations are critical,
// everything else a warning.
func appearedLevel(it review.Item) string {
	switch it.Severity {
	case "warning", "violation":
		return "critical"
	}
	return "warning"
}

// compareAppeared reports items present now but not before.
func compareAppeared(prev, curr *WatchState) []Alert {
	var alerts []Alert
	now := time.Now()
	for _, key := range sortedKeys(curr.Items) {
		if _, seen := prev.Items[key]; seen {
			continue
		}
		it := curr.Items[key]
		alerts = append(alerts, Alert{
			Level:   appearedLevel(it),
			Title:   fmt.Sprintf("New %s: %s", it.Kind, it.RuleID),
			Message: fmt.Sprintf("line %d: %s", it.Line, it.Title),
			Time:    now,
		})
	}
	return alerts
}

// compareInfo reports resolved items and a clean review.
func compareInfo(prev, curr *WatchState) []Alert {
	var alerts []Alert
	now := time.Now()

	for _, key := range sortedKeys(prev.Items) {
		if _, still := curr.Items[key]; still {
			continue
		}
		it := prev.Items[key]
		alerts = append(alerts, Alert{
			Level:   "info",
			Title:   fmt.Sprintf("Resolved %s: %s", it.Kind, it.RuleID),
			Message: fmt.Sprintf("line %d: %s", it.Line, it.Title),
			Time:    now,
		})
	}

	if len(curr.Items) == 0 && len(prev.Items) > 0 {
		alerts = append(alerts, Alert{
			Level:   "info",
			Title:   "Review clean",
			Message: fmt.Sprintf("All %d previous result(s) resolved", len(prev.Items)),
			Time:    now,
		})
	}
	return alerts
}

func sortedKeys(items map[string]review.Item) []string {
	keys := make([]string, 0, len(items))
	for k := range items {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := items[keys[i]], items[keys[j]]
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return keys[i] < keys[j]
	})
	return keys
}
