package seating

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func departmentRoster(perDepartment int, departments ...string) []Person {
	out := make([]Person, 0, perDepartment*len(departments))
	for _, dept := range departments {
		for i := 0; i < perDepartment; i++ {
			out = append(out, Person{Name: fmt.Sprintf("%s-%d", dept, i), Department: dept})
		}
	}
	return out
}

func seated(arr Arrangement) []Person {
	var out []Person
	for _, table := range arr.Tables {
		out = append(out, table.People...)
	}
	return out
}

func TestAssignSequentialFillsTablesInOrder(t *testing.T) {
	t.Parallel()

	input := people("p0", "p1", "p2", "p3", "p4")
	arr, err := New(WithSource(identitySource{})).Assign(input, Capacities{3, 2}, false)
	require.NoError(t, err)

	require.Len(t, arr.Tables, 2)
	require.Equal(t, 1, arr.Tables[0].Number)
	require.Equal(t, 2, arr.Tables[1].Number)
	require.Equal(t, input[:3], arr.Tables[0].People)
	require.Equal(t, input[3:], arr.Tables[1].People)
}

func TestAssignSequentialIsDeterministicForFixedSeed(t *testing.T) {
	t.Parallel()

	input := departmentRoster(5, "Eng", "Sales", "Ops")
	capacities, err := PlanCapacities(len(input), 4)
	require.NoError(t, err)

	first, err := New(WithSeed(99)).Assign(input, capacities, false)
	require.NoError(t, err)
	second, err := New(WithSeed(99)).Assign(input, capacities, false)
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestAssignSeatsEveryoneExactlyOnce(t *testing.T) {
	t.Parallel()

	input := departmentRoster(7, "Eng", "Sales", "Ops", "HR")
	for _, diversify := range []bool{false, true} {
		for seats := 1; seats <= 9; seats++ {
			t.Run(fmt.Sprintf("diversify=%t/seats=%d", diversify, seats), func(t *testing.T) {
				arr, err := Arrange(New(WithSeed(uint64(seats))), input, seats, diversify)
				require.NoError(t, err)

				require.Equal(t, len(input), arr.TotalSeated())
				require.ElementsMatch(t, input, seated(arr))
				for _, table := range arr.Tables {
					require.LessOrEqual(t, table.Len(), table.Capacity)
					require.Equal(t, table.Capacity, table.Len(), "planned capacities are filled exactly")
				}
			})
		}
	}
}

func TestAssignKeepsDuplicatePeople(t *testing.T) {
	t.Parallel()

	dup := Person{Name: "Alex Kim", Department: "Eng"}
	arr, err := Arrange(New(), []Person{dup, dup, dup}, 2, true)
	require.NoError(t, err)
	require.Equal(t, 3, arr.TotalSeated())
}

func TestAssignDoesNotReorderInput(t *testing.T) {
	t.Parallel()

	input := departmentRoster(3, "Eng", "Sales")
	snapshot := append([]Person(nil), input...)

	_, err := New(WithSeed(3)).Assign(input, Capacities{3, 3}, true)
	require.NoError(t, err)
	require.Equal(t, snapshot, input)
}

func TestAssignDiversifyTieGoesToLowestIndex(t *testing.T) {
	t.Parallel()

	input := []Person{
		{Name: "A", Department: "Eng"},
		{Name: "B", Department: "Eng"},
	}
	arr, err := New(WithSource(identitySource{})).Assign(input, Capacities{2, 2}, true)
	require.NoError(t, err)

	require.Equal(t, []Person{input[0]}, arr.Tables[0].People)
	require.Equal(t, []Person{input[1]}, arr.Tables[1].People)
}

func TestAssignDiversifySkipsZeroCapacityTables(t *testing.T) {
	t.Parallel()

	input := departmentRoster(1, "Eng", "Sales")
	arr, err := New(WithSeed(1)).Assign(input, Capacities{0, 2}, true)
	require.NoError(t, err)

	require.Empty(t, arr.Tables[0].People)
	require.Len(t, arr.Tables[1].People, 2)
}

func TestAssignDiversifyMixesTwoByTwo(t *testing.T) {
	t.Parallel()

	input := []Person{
		{Name: "A", Department: "Eng"},
		{Name: "B", Department: "Eng"},
		{Name: "C", Department: "Sales"},
		{Name: "D", Department: "Sales"},
	}

	for seed := uint64(0); seed < 100; seed++ {
		arr, err := Arrange(New(WithSeed(seed)), input, 2, true)
		require.NoError(t, err)
		require.Len(t, arr.Tables, 2)
		for _, table := range arr.Tables {
			require.Len(t, table.People, 2)
			require.Equal(t, 1, table.CountDepartment("Eng"), "seed %d", seed)
			require.Equal(t, 1, table.CountDepartment("Sales"), "seed %d", seed)
		}
	}
}

func TestAssignDiversifyReducesSameDepartmentPairs(t *testing.T) {
	t.Parallel()

	input := departmentRoster(6, "Eng", "Sales")
	const trials = 200

	var sequential, diverse int
	for seed := uint64(0); seed < trials; seed++ {
		arr, err := Arrange(New(WithSeed(seed)), input, 4, false)
		require.NoError(t, err)
		sequential += arr.SameDepartmentPairs()

		arr, err = Arrange(New(WithSeed(seed)), input, 4, true)
		require.NoError(t, err)
		require.Len(t, arr.Tables, 3)
		diverse += arr.SameDepartmentPairs()
	}

	require.Less(t, diverse, sequential)
}

func TestAssignRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	assigner := New()

	_, err := assigner.Assign(nil, Capacities{2}, false)
	require.ErrorIs(t, err, ErrNoPeople)

	_, err = assigner.Assign(people("a"), nil, false)
	require.ErrorIs(t, err, ErrInvalidCapacities)

	_, err = assigner.Assign(people("a"), Capacities{2, -1}, false)
	require.ErrorIs(t, err, ErrInvalidCapacities)
}

func TestAssignReportsCapacityShortfall(t *testing.T) {
	t.Parallel()

	input := people("a", "b", "c", "d", "e")
	for _, diversify := range []bool{false, true} {
		arr, err := New().Assign(input, Capacities{2, 2}, diversify)
		require.ErrorIs(t, err, ErrCapacityShortfall)
		require.Empty(t, arr.Tables)
	}
}

func TestArrangeValidatesConfiguration(t *testing.T) {
	t.Parallel()

	_, err := Arrange(New(), nil, 4, false)
	require.ErrorIs(t, err, ErrNoPeople)

	_, err = Arrange(New(), people("a"), 0, false)
	require.ErrorIs(t, err, ErrInvalidSeatsPerTable)
}

func TestArrangementSameDepartmentPairs(t *testing.T) {
	t.Parallel()

	arr := Arrangement{Tables: []Table{
		{Capacity: 4, People: departmentRoster(3, "Eng")},
		{Capacity: 4, People: departmentRoster(1, "Eng", "Sales", "Ops")},
	}}

	require.Equal(t, 3, arr.Tables[0].SameDepartmentPairs())
	require.Equal(t, 0, arr.Tables[1].SameDepartmentPairs())
	require.Equal(t, 3, arr.SameDepartmentPairs())
	require.Equal(t, 6, arr.TotalSeated())
}

func BenchmarkAssignDiversify(b *testing.B) {
	input := departmentRoster(50, "Eng", "Sales", "Ops", "HR", "Finance", "Legal")
	capacities, err := PlanCapacities(len(input), 8)
	if err != nil {
		b.Fatalf("unexpected error: %v", err)
	}
	assigner := New()
	for i := 0; i < b.N; i++ {
		if _, err := assigner.Assign(input, capacities, true); err != nil {
			b.Fatalf("unexpected error: %v", err)
		}
	}
}
