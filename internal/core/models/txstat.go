package models

// CategoryStat summarizes the live per-transaction totals of one category.
type CategoryStat struct {
	// Smallest live total (lower bound of its histogram bucket)
	Min int64

	// Largest live total
	Max int64

	// Total / number of contributing transactions, 0 when there are none
	Avg int64

	// Sum of all live totals
	Total int64
}

// StatInfo is indexed by Category.
type StatInfo [NumCategories]CategoryStat
