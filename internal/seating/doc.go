// Package seating plans table capacities for a headcount and assigns people to
// tables, either by sequential fill or by a greedy heuristic that keeps
// colleagues from the same department apart.
package seating
