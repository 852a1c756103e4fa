package seating

// Person is a guest to be seated. Two people with identical fields are still
// distinct guests.
type Person struct {
	Name       string
	Department string
}

// Capacities holds the number of seats of each table, in table order.
type Capacities []int

// Total returns the number of seats across all tables.
func (c Capacities) Total() int {
	total := 0
	for _, v := range c {
		total += v
	}
	return total
}

// Table is a single table of an arrangement. Number is 1-based.
type Table struct {
	Number   int
	Capacity int
	People   []Person
}

// Len returns the number of people seated at the table.
func (t Table) Len() int {
	return len(t.People)
}

// Full reports whether the table has no free seats left.
func (t Table) Full() bool {
	return len(t.People) >= t.Capacity
}

// CountDepartment returns how many people at the table belong to department.
func (t Table) CountDepartment(department string) int {
	count := 0
	for _, p := range t.People {
		if p.Department == department {
			count++
		}
	}
	return count
}

// SameDepartmentPairs returns the number of unordered pairs at the table that
// share a department.
func (t Table) SameDepartmentPairs() int {
	counts := make(map[string]int, len(t.People))
	for _, p := range t.People {
		counts[p.Department]++
	}
	pairs := 0
	for _, n := range counts {
		pairs += n * (n - 1) / 2
	}
	return pairs
}

// Arrangement is the ordered set of tables produced by a single assignment.
type Arrangement struct {
	Tables []Table
}

// TotalSeated returns the number of people seated across all tables.
func (a Arrangement) TotalSeated() int {
	total := 0
	for _, t := range a.Tables {
		total += t.Len()
	}
	return total
}

// SameDepartmentPairs sums SameDepartmentPairs over every table.
func (a Arrangement) SameDepartmentPairs() int {
	pairs := 0
	for _, t := range a.Tables {
		pairs += t.SameDepartmentPairs()
	}
	return pairs
}

// Assigner describes the behaviour required from a seat assigner.
type Assigner interface {
	Assign(people []Person, capacities Capacities, diversify bool) (Arrangement, error)
}
