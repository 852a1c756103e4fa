package seating

import "errors"

var (
	// ErrNoPeople is returned when there is nobody to seat.
	ErrNoPeople = errors.New("at least one person is required to generate a seating arrangement")
	// ErrInvalidSeatsPerTable is returned when the seats-per-table target is not a positive integer.
	ErrInvalidSeatsPerTable = errors.New("seats per table must be a positive integer")
	// ErrInvalidCapacities is returned when the capacity list is empty or contains negative entries.
	ErrInvalidCapacities = errors.New("table capacities must contain at least one non-negative value")
	// ErrCapacityShortfall is returned when the tables cannot hold every person.
	ErrCapacityShortfall = errors.New("table capacities are smaller than the number of people")
)
