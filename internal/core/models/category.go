package models

import "fmt"

// Category identifies the purpose of an allocation made on behalf of a transaction.
type Category uint8

const (
	CategoryTracker Category = iota
	CategoryStory
	CategorySavepoint
	CategoryStatement
	// CategoryPinnedTuple counts tuples kept alive by the transaction, not bytes.
	CategoryPinnedTuple

	NumCategories
)

var categoryNames = [NumCategories]string{
	CategoryTracker:     "tracker",
	CategoryStory:       "story",
	CategorySavepoint:   "savepoint",
	CategoryStatement:   "statement",
	CategoryPinnedTuple: "pinned_tuple",
}

func (c Category) String() string {
	if !c.Valid() {
		return fmt.Sprintf("category(%d)", uint8(c))
	}
	return categoryNames[c]
}

func (c Category) Valid() bool {
	return c < NumCategories
}

// IsCount reports whether totals of this category are object counts rather than bytes.
func (c Category) IsCount() bool {
	return c == CategoryPinnedTuple
}

// Categories returns every category in index order.
func Categories() []Category {
	cats := make([]Category, 0, NumCategories)
	for c := Category(0); c < NumCategories; c++ {
		cats = append(cats, c)
	}
	return cats
}

func ParseCategory(name string) (Category, error) {
	for c, n := range categoryNames {
		if n == name {
			return Category(c), nil
		}
	}
	return 0, fmt.Errorf("unknown category %q", name)
}
