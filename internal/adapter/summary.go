package adapter

import "github.com/ecomap/wastemap/pkg/core"

// MarkerSummary is one row of the sidebar list for the active category
type MarkerSummary struct {
	Title       string                `json:"title"`
	Details     string                `json:"details"`
	StatusLabel string                `json:"statusLabel"`
	Coordinates core.Coordinates      `json:"coordinates"`
	Properties  core.MarkerProperties `json:"properties"`
}

// MarkersInfo lists the active category's markers for the sidebar.
func (a *Adapter) MarkersInfo() []MarkerSummary {
	records := a.store.Markers(a.category)
	out := make([]MarkerSummary, len(records))
	for i, r := range records {
		out[i] = MarkerSummary{
			Title:       r.Properties.HintContent,
			Details:     r.Properties.BalloonContent,
			StatusLabel: StatusLabel(a.category, r.Properties.Status),
			Coordinates: r.Coordinates,
			Properties:  r.Properties,
		}
	}
	return out
}
