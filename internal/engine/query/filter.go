package query

import "TrafficTally/internal/model"

// FilterByLocation keeps only the report entries for the given location.
func FilterByLocation(report model.Report, location string) model.Report {
	filtered := make(model.Report, 0, 1)
	for _, entry := range report {
		if entry.Location == location {
			filtered = append(filtered, entry)
		}
	}
	return filtered
}

// FilterByVehicle narrows every entry's counts to just the given vehicle
// type. Entries are kept even when the remaining count is zero. Composes
// after FilterByLocation when both query parameters are present.
func FilterByVehicle(report model.Report, vt model.VehicleType) model.Report {
	filtered := make(model.Report, 0, len(report))
	for _, entry := range report {
		filtered = append(filtered, model.LocationCounts{
			Location: entry.Location,
			Data:     model.CountMap{vt: entry.Data[vt]},
		})
	}
	return filtered
}
