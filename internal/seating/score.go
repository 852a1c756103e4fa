package seating

const (
	cleanTableScore     = 1000.0
	sameDepartmentCost  = 100.0
	fillBalancingWeight = 10.0
)

// Score rates how well a person from department fits at table. Higher is
// better. A table without colleagues from the same department scores far
// above any other; the remaining term favours emptier tables.
//
// Score must not be called for a full table.
func Score(table Table, department string) float64 {
	var score float64
	if same := table.CountDepartment(department); same == 0 {
		score = cleanTableScore
	} else {
		score = -sameDepartmentCost * float64(same)
	}

	fill := float64(table.Len()) / float64(table.Capacity)
	return score + fillBalancingWeight*(1-fill)
}
