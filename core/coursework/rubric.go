package coursework

import (
	"github.com/trezcool/masomo-dashboard/core"
)

// SumPoints is the one reducer every point total goes through.
// Totals are always derived from the live items, never stored alongside them.
func SumPoints[T any](items []T, points func(T) float64) float64 {
	var total float64
	for _, item := range items {
		total += points(item)
	}
	return total
}

func rubricPoints(item RubricItem) float64 { return item.Points }
func questionPoints(q Question) float64    { return q.Points }

// Rubric is the editable list of grading criteria of a draft.
type Rubric struct {
	Items []RubricItem `json:"items" validate:"dive"`
}

func (r *Rubric) index(id string) int {
	for i, item := range r.Items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

// Add appends an empty item with a fresh id.
func (r *Rubric) Add() RubricItem {
	item := RubricItem{ID: NewID()}
	r.Items = append(r.Items, item)
	return item
}

// Update replaces the item matching id with a copy holding the patched fields.
func (r *Rubric) Update(id string, patch RubricItemPatch) (RubricItem, error) {
	idx := r.index(id)
	if idx < 0 {
		return RubricItem{}, ErrItemNotFound
	}
	item := r.Items[idx]
	if patch.Criterion != nil {
		item.Criterion = core.CleanString(*patch.Criterion)
	}
	if patch.Description != nil {
		item.Description = *patch.Description
	}
	if patch.Points != nil {
		item.Points = *patch.Points
	}
	r.Items[idx] = item
	return item, nil
}

func (r *Rubric) Remove(id string) error {
	idx := r.index(id)
	if idx < 0 {
		return ErrItemNotFound
	}
	r.Items = append(r.Items[:idx:idx], r.Items[idx+1:]...)
	return nil
}

func (r Rubric) TotalPoints() float64 {
	return SumPoints(r.Items, rubricPoints)
}

// OverAllocated reports whether the rubric awards more points than assignmentTotal.
func (r Rubric) OverAllocated(assignmentTotal float64) bool {
	return r.TotalPoints() > assignmentTotal
}
