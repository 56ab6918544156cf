// Package query is the generic list utility behind every admin table:
// filter state, predicate composition, ordering, pagination, and row
// selection. It works on plain slices and holds no storage state.
package query
