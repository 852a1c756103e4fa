package seating

// PlanCapacities splits total people into ceil(total/seatsPerTable) tables.
// Capacities never differ by more than one; the larger tables come first.
func PlanCapacities(total, seatsPerTable int) (Capacities, error) {
	if seatsPerTable <= 0 {
		return nil, ErrInvalidSeatsPerTable
	}
	if total <= 0 {
		return nil, ErrNoPeople
	}

	numTables := (total + seatsPerTable - 1) / seatsPerTable
	base := total / numTables
	remainder := total % numTables

	capacities := make(Capacities, numTables)
	for i := range capacities {
		capacities[i] = base
		if i < remainder {
			capacities[i]++
		}
	}
	return capacities, nil
}
