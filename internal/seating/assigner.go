package seating

type greedyAssigner struct {
	source Source
}

// Option configures an Assigner.
type Option func(*greedyAssigner)

// WithSource overrides the shuffle randomness, primarily for tests.
func WithSource(src Source) Option {
	return func(a *greedyAssigner) {
		if src != nil {
			a.source = src
		}
	}
}

// WithSeed makes the shuffle reproducible. The resulting Assigner must not be
// shared between goroutines.
func WithSeed(seed uint64) Option {
	return func(a *greedyAssigner) {
		a.source = NewSeededSource(seed)
	}
}

// New creates an Assigner that shuffles people and then seats them either
// sequentially or with the department-diversity heuristic. Without options it
// is safe for concurrent use.
func New(opts ...Option) Assigner {
	a := &greedyAssigner{source: globalSource{}}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *greedyAssigner) Assign(people []Person, capacities Capacities, diversify bool) (Arrangement, error) {
	if len(people) == 0 {
		return Arrangement{}, ErrNoPeople
	}
	if err := validateCapacities(capacities); err != nil {
		return Arrangement{}, err
	}
	if capacities.Total() < len(people) {
		return Arrangement{}, ErrCapacityShortfall
	}

	tables := make([]Table, len(capacities))
	for i, capacity := range capacities {
		tables[i] = Table{
			Number:   i + 1,
			Capacity: capacity,
			People:   make([]Person, 0, capacity),
		}
	}

	shuffled := Shuffle(people, a.source)
	if diversify {
		if err := seatDiverse(tables, shuffled); err != nil {
			return Arrangement{}, err
		}
	} else {
		seatSequential(tables, shuffled)
	}

	return Arrangement{Tables: tables}, nil
}

func seatSequential(tables []Table, people []Person) {
	next := 0
	for i := range tables {
		for !tables[i].Full() && next < len(people) {
			tables[i].People = append(tables[i].People, people[next])
			next++
		}
	}
}

// seatDiverse places each person at the open table with the highest Score.
// On equal scores the lowest table index wins.
func seatDiverse(tables []Table, people []Person) error {
	for _, person := range people {
		best := bestTable(tables, person.Department)
		if best < 0 {
			return ErrCapacityShortfall
		}
		tables[best].People = append(tables[best].People, person)
	}
	return nil
}

func bestTable(tables []Table, department string) int {
	best := -1
	var bestScore float64
	for i, table := range tables {
		if table.Full() {
			continue
		}
		score := Score(table, department)
		if best < 0 || score > bestScore {
			best = i
			bestScore = score
		}
	}
	return best
}

func validateCapacities(capacities Capacities) error {
	if len(capacities) == 0 {
		return ErrInvalidCapacities
	}
	for _, c := range capacities {
		if c < 0 {
			return ErrInvalidCapacities
		}
	}
	return nil
}

// Arrange plans capacities for people at seatsPerTable and seats them with a.
func Arrange(a Assigner, people []Person, seatsPerTable int, diversify bool) (Arrangement, error) {
	capacities, err := PlanCapacities(len(people), seatsPerTable)
	if err != nil {
		return Arrangement{}, err
	}
	return a.Assign(people, capacities, diversify)
}
