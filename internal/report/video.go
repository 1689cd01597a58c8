package report

import (
	"fmt"

	"github.com/eleven-am/cascade-detect/internal/detect"
)

type VideoPolicy string

const (
	// PolicyTotals reports the frame count followed by running totals per kind.
	PolicyTotals VideoPolicy = "totals"
	// PolicyPerFrame prefixes each frame's summary with "Frame K: ".
	PolicyPerFrame VideoPolicy = "per_frame"
)

func ParseVideoPolicy(s string) VideoPolicy {
	if VideoPolicy(s) == PolicyPerFrame {
		return PolicyPerFrame
	}
	return PolicyTotals
}

// VideoSummary accumulates detections frame by frame under a single policy.
type VideoSummary struct {
	policy VideoPolicy
	cat    detect.Category
	frames int
	totals Counts
	lines  []string
}

func NewVideoSummary(policy VideoPolicy, cat detect.Category) *VideoSummary {
	return &VideoSummary{
		policy: policy,
		cat:    cat,
		totals: make(Counts, 4),
	}
}

func (v *VideoSummary) AddFrame(regions []detect.Region) {
	if v.policy == PolicyPerFrame {
		for _, msg := range Summarize(v.cat, regions) {
			v.lines = append(v.lines, fmt.Sprintf("Frame %d: %s", v.frames, msg))
		}
	} else {
		for kind, n := range Count(regions) {
			v.totals[kind] += n
		}
	}
	v.frames++
}

func (v *VideoSummary) Frames() int {
	return v.frames
}

func (v *VideoSummary) Totals() Counts {
	return v.totals
}

func (v *VideoSummary) Lines() []string {
	if v.policy == PolicyPerFrame {
		out := make([]string, len(v.lines))
		copy(out, v.lines)
		return out
	}

	lines := []string{fmt.Sprintf("Processed %d frames.", v.frames)}
	switch v.cat {
	case detect.CategoryFace:
		lines = append(lines,
			fmt.Sprintf("Detected %d face instances.", v.totals[detect.KindFace]),
			fmt.Sprintf("Detected %d eye instances.", v.totals[detect.KindEye]),
		)
	case detect.CategoryPedestrian:
		lines = append(lines, fmt.Sprintf("Detected %d pedestrian instances.", v.totals[detect.KindPedestrian]))
	case detect.CategoryVehicle:
		lines = append(lines, fmt.Sprintf("Detected %d vehicle instances.", v.totals[detect.KindVehicle]))
	}
	return lines
}
