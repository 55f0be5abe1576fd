// Package series holds the labeled numeric samples every chart and metric is computed from.
package series

import (
	"encoding/json"
	"math"
	"strconv"
)

// Sample is one observation. Category identifies its position within a Series.
type Sample struct {
	Category string  `json:"category" db:"category"`
	Value    float64 `json:"value" db:"value"`
}

// UnmarshalJSON accepts "label" as an alias of "category", pie payloads use the former.
func (s *Sample) UnmarshalJSON(data []byte) error {
	var raw struct {
		Category *string `json:"category"`
		Label    *string `json:"label"`
		Value    float64 `json:"value"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch {
	case raw.Category != nil:
		s.Category = *raw.Category
	case raw.Label != nil:
		s.Category = *raw.Label
	default:
		s.Category = ""
	}
	s.Value = raw.Value
	return nil
}

// Series is an ordered sequence of samples. Order is significant for bar & line charts.
type Series []Sample

// New builds a Series out of alternating category/value pairs given as parallel slices.
func New(categories []string, values []float64) Series {
	n := len(categories)
	if len(values) < n {
		n = len(values)
	}
	s := make(Series, 0, n)
	for i := 0; i < n; i++ {
		s = append(s, Sample{Category: categories[i], Value: values[i]})
	}
	return s
}

// Values returns a copy of the sample values, in order.
func (s Series) Values() []float64 {
	vals := make([]float64, len(s))
	for i, smp := range s {
		vals[i] = smp.Value
	}
	return vals
}

// Categories returns the sample categories, in order.
func (s Series) Categories() []string {
	cats := make([]string, len(s))
	for i, smp := range s {
		cats[i] = smp.Category
	}
	return cats
}

func (s Series) Len() int { return len(s) }

// Validate checks the input contract shared by every chart: at least one sample, all values finite.
func (s Series) Validate() error {
	if len(s) == 0 {
		return ErrEmptyInput
	}
	for i, smp := range s {
		if math.IsNaN(smp.Value) || math.IsInf(smp.Value, 0) {
			return NewInvalidConfigError("series["+strconv.Itoa(i)+"].value", "value must be finite")
		}
	}
	return nil
}
