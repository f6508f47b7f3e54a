package api

import (
	"context"
	"fmt"

	"coviddash/internal/engine"
	"coviddash/internal/layout"
	"coviddash/internal/reactive"
)

// DashboardOutputs are the slots refreshed by a dropdown change, in the order
// engine.Dashboard.Update produces them.
var DashboardOutputs = []reactive.Slot{
	{ID: layout.MetricsID, Property: "children"},
	{ID: layout.CasesByCountryID, Property: "figure"},
	{ID: layout.CasesOverTimeID, Property: "figure"},
	{ID: layout.BarChartID, Property: "figure"},
	{ID: layout.PieChartID, Property: "figure"},
}

// RegisterCallbacks binds the country dropdown to the dashboard update.
// Values outside the dropdown's option set are rejected before computing.
func RegisterCallbacks(rt *reactive.Runtime, dash *engine.Dashboard) error {
	return rt.Register(reactive.Callback{
		Input:   layout.DropdownID,
		Outputs: DashboardOutputs,
		Validate: func(v string) error {
			if !dash.Valid(v) {
				return fmt.Errorf("unknown selection %q", v)
			}
			return nil
		},
		Handler: func(_ context.Context, v string) ([]any, error) {
			return dash.Update(v).Outputs(), nil
		},
	})
}
