package domain

// Category is the closed set of things a report can describe
type Category string

const (
	CategoryItem   Category = "item"
	CategoryPerson Category = "person"
	CategoryPet    Category = "pet"
)

// Valid reports whether c is one of the known categories
func (c Category) Valid() bool {
	switch c {
	case CategoryItem, CategoryPerson, CategoryPet:
		return true
	}
	return false
}

// Item is the attribute shape used for match scoring.
// Everything except Description is optional.
type Item struct {
	ID                  string   `json:"id,omitempty" yaml:"id,omitempty"`
	Description         string   `json:"description" yaml:"description"`
	DistinctiveFeatures string   `json:"distinctiveFeatures,omitempty" yaml:"distinctiveFeatures,omitempty"`
	Category            Category `json:"category,omitempty" yaml:"category,omitempty"`
	Subcategory         string   `json:"subcategory,omitempty" yaml:"subcategory,omitempty"`
	Color               string   `json:"color,omitempty" yaml:"color,omitempty"`
	Brand               string   `json:"brand,omitempty" yaml:"brand,omitempty"`
	Location            string   `json:"location,omitempty" yaml:"location,omitempty"`
}

// MatchCandidate is a ranked candidate with its combined score (0-100) and
// the reasons that contributed to it
type MatchCandidate struct {
	Item         Item     `json:"item"`
	MatchScore   float64  `json:"matchScore"`
	MatchReasons []string `json:"matchReasons"`
}
