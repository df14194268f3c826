package analysis

import (
	"context"

	"github.com/kindcoach/kindcoach-api/internal/domain/entities"
)

// DashboardStats aggregates an owner's analysis activity.
type DashboardStats struct {
	TotalSessions     int                          `json:"total_sessions"`
	CompletedSessions int                          `json:"completed_sessions"`
	CompletionRate    float64                      `json:"completion_rate"`
	KindCounts        map[entities.AnalysisKind]int `json:"kind_counts"`
	ChildCounts       map[string]int               `json:"child_counts"`
	PurposeCounts     map[string]int               `json:"purpose_counts"`
	MonthlyCounts     map[string]int               `json:"monthly_counts"`
}

// DashboardStats computes activity, completion, per-child, per-purpose and
// per-month aggregates over the owner's sessions.
func (m *Manager) DashboardStats(ctx context.Context, owner string) (*DashboardStats, error) {
	summaries, err := m.repo.List(ctx, owner)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		TotalSessions: len(summaries),
		KindCounts:    make(map[entities.AnalysisKind]int),
		ChildCounts:   make(map[string]int),
		PurposeCounts: make(map[string]int),
		MonthlyCounts: make(map[string]int),
	}

	for _, s := range summaries {
		complete := true
		for _, kind := range entities.AllAnalysisKinds {
			if s.Completion[kind] {
				stats.KindCounts[kind]++
			} else {
				complete = false
			}
		}
		if complete {
			stats.CompletedSessions++
		}
		if s.Metadata.ChildName != "" {
			stats.ChildCounts[s.Metadata.ChildName]++
		}
		if s.Metadata.Purpose != "" {
			stats.PurposeCounts[s.Metadata.Purpose]++
		}
		stats.MonthlyCounts[s.CreatedAt.Format("2006-01")]++
	}

	if stats.TotalSessions > 0 {
		stats.CompletionRate = float64(stats.CompletedSessions) / float64(stats.TotalSessions) * 100
	}
	return stats, nil
}
