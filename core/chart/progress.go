package chart

import (
	"math"

	"github.com/trezcool/masomo-dashboard/core/series"
)

// ProgressStatus is the qualitative label of a progress ring.
type ProgressStatus string

const (
	StatusNeedsImprovement ProgressStatus = "needs_improvement"
	StatusFair             ProgressStatus = "fair"
	StatusGood             ProgressStatus = "good"
	StatusExcellent        ProgressStatus = "excellent"
	StatusCompleted        ProgressStatus = "completed"
)

type ProgressRing struct {
	Current       float64        `json:"current"`
	Target        float64        `json:"target"`
	Percentage    int            `json:"percentage"`
	Radius        float64        `json:"radius"`
	StrokeWidth   float64        `json:"stroke_width"`
	Circumference float64        `json:"circumference"`
	DashOffset    float64        `json:"dash_offset"`
	Status        ProgressStatus `json:"status"`
	Complete      bool           `json:"complete"`
	Color         Color          `json:"color"`
}

// Progress maps current/target to a clamped percentage and the stroke-dash offset of a circular gauge.
// target must be > 0: a zero or negative target is rejected, not computed.
func Progress(current, target float64, opts ProgressOptions) (ProgressRing, error) {
	if !finite(current) {
		return ProgressRing{}, series.NewInvalidConfigError("current", "must be finite")
	}
	if !finite(target) {
		return ProgressRing{}, series.NewInvalidConfigError("target", "must be finite")
	}
	if target <= 0 {
		return ProgressRing{}, series.ErrDivideByZero
	}
	if err := opts.Validate(); err != nil {
		return ProgressRing{}, err
	}

	pct := Percentage(current, target)
	circ := 2 * math.Pi * opts.Radius
	return ProgressRing{
		Current:       current,
		Target:        target,
		Percentage:    pct,
		Radius:        opts.Radius,
		StrokeWidth:   opts.StrokeWidth,
		Circumference: circ,
		DashOffset:    circ * (1 - float64(pct)/100),
		Status:        StatusFor(pct),
		Complete:      pct == 100,
		Color:         opts.Color,
	}, nil
}

// Percentage is clamp(round(current/target*100), 0, 100). target must be > 0.
func Percentage(current, target float64) int {
	pct := math.Round(current / target * 100)
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	default:
		return int(pct)
	}
}

// StatusFor buckets a percentage at 25/50/75/100.
func StatusFor(pct int) ProgressStatus {
	switch {
	case pct >= 100:
		return StatusCompleted
	case pct >= 75:
		return StatusExcellent
	case pct >= 50:
		return StatusGood
	case pct >= 25:
		return StatusFair
	default:
		return StatusNeedsImprovement
	}
}
