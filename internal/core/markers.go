package core

// Project maps every record to exactly one marker, preserving order.
// Records sharing coordinates still produce separate markers.
func Project(t *ProviderTable) []MarkerDescriptor {
	markers := make([]MarkerDescriptor, t.Len())
	for i := range markers {
		rec := t.records[i]
		markers[i] = MarkerDescriptor{
			Index:    i,
			Position: rec.Position,
			Tooltip: Tooltip{
				Name:    rec.Organization,
				Address: rec.Address,
				City:    rec.City,
				Region:  rec.State,
			},
		}
	}
	return markers
}
