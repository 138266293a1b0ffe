package model

// Module is a course module in the catalog.
//
// The JSON field names (all lowercase, no separators) are the ones the
// frontend and the existing document collection use.
type Module struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	ShortDescription string `json:"shortdescription"`
	Description      string `json:"description"`
	Content          string `json:"content"`
	StudyCredit      int    `json:"studycredit"`
	Location         string `json:"location"`
	Level            string `json:"level"`
	LearningOutcomes string `json:"learningoutcomes"`
}

// ModuleUpdate is a partial update: nil fields are left unchanged.
type ModuleUpdate struct {
	Name             *string `json:"name"`
	ShortDescription *string `json:"shortdescription"`
	Description      *string `json:"description"`
	Content          *string `json:"content"`
	StudyCredit      *int    `json:"studycredit"`
	Location         *string `json:"location"`
	Level            *string `json:"level"`
	LearningOutcomes *string `json:"learningoutcomes"`
}

// Apply copies every non-nil field of u onto m.
func (u ModuleUpdate) Apply(m *Module) {
	if u.Name != nil {
		m.Name = *u.Name
	}
	if u.ShortDescription != nil {
		m.ShortDescription = *u.ShortDescription
	}
	if u.Description != nil {
		m.Description = *u.Description
	}
	if u.Content != nil {
		m.Content = *u.Content
	}
	if u.StudyCredit != nil {
		m.StudyCredit = *u.StudyCredit
	}
	if u.Location != nil {
		m.Location = *u.Location
	}
	if u.Level != nil {
		m.Level = *u.Level
	}
	if u.LearningOutcomes != nil {
		m.LearningOutcomes = *u.LearningOutcomes
	}
}

// FilterOption is one distinct value of a filterable module field together
// with the number of modules that have it.
type FilterOption[T string | int] struct {
	Value T   `json:"value"`
	Count int `json:"count"`
}

// FilterOptions feeds the catalog sidebar. Each list is sorted by value.
type FilterOptions struct {
	Locations    []FilterOption[string] `json:"locations"`
	StudyCredits []FilterOption[int]    `json:"studyCredits"`
	Levels       []FilterOption[string] `json:"levels"`
}
