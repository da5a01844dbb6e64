package models

import "math"

// CaseStats is the read-only analytics rollup the investigator dashboard and
// news page render. Everything here derives from the store; nothing is kept.
type CaseStats struct {
	Total              int            `json:"total"`
	Active             int            `json:"active"`
	Resolved           int            `json:"resolved"`
	ResolutionRate     int            `json:"resolutionRate"`
	ByStatus           map[string]int `json:"byStatus"`
	ByPriority         map[string]int `json:"byPriority"`
	ByCrimeType        map[string]int `json:"byCrimeType"`
	AnonymousCount     int            `json:"anonymousCount"`
	AvgResolutionHours float64        `json:"avgResolutionHours"`
}

// ComputeStats folds the case list into dashboard counters. Active means New
// or Investigating; the resolution rate is a rounded percentage of resolved
// cases; average resolution time only counts cases with both timestamps.
func ComputeStats(cases []Case) CaseStats {
	stats := CaseStats{
		ByStatus:    map[string]int{},
		ByPriority:  map[string]int{},
		ByCrimeType: map[string]int{},
	}

	var resolutionHours float64
	var resolutionSamples int

	for _, c := range cases {
		stats.Total++
		stats.ByStatus[string(c.Status)]++
		stats.ByPriority[string(c.Priority)]++
		crimeType := c.CrimeType
		if crimeType == "" {
			crimeType = "other"
		}
		stats.ByCrimeType[crimeType]++

		if c.Anonymous {
			stats.AnonymousCount++
		}
		switch c.Status {
		case StatusNew, StatusInvestigating:
			stats.Active++
		case StatusResolved:
			stats.Resolved++
		}
		if c.Status == StatusResolved && c.ResolvedAt != nil {
			resolutionHours += c.ResolvedAt.Time().Sub(c.SubmittedAt.Time()).Hours()
			resolutionSamples++
		}
	}

	if stats.Total > 0 {
		stats.ResolutionRate = int(math.Round(float64(stats.Resolved) / float64(stats.Total) * 100))
	}
	if resolutionSamples > 0 {
		stats.AvgResolutionHours = resolutionHours / float64(resolutionSamples)
	}
	return stats
}
