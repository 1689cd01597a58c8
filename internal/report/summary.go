package report

import (
	"fmt"

	"github.com/eleven-am/cascade-detect/internal/detect"
)

type Counts map[detect.Kind]int

func Count(regions []detect.Region) Counts {
	c := make(Counts, 4)
	for _, r := range regions {
		c[r.Kind]++
	}
	return c
}

// Summarize renders the human-readable result of one raster.
func Summarize(cat detect.Category, regions []detect.Region) []string {
	c := Count(regions)

	switch cat {
	case detect.CategoryFace:
		faces, eyes := c[detect.KindFace], c[detect.KindEye]
		if faces == 0 && eyes == 0 {
			return []string{"No faces or eyes detected."}
		}
		return []string{fmt.Sprintf("Detected %d face(s) and %d eye(s).", faces, eyes)}
	case detect.CategoryPedestrian:
		return []string{single(c[detect.KindPedestrian], "pedestrian")}
	case detect.CategoryVehicle:
		return []string{single(c[detect.KindVehicle], "vehicle")}
	default:
		return nil
	}
}

func single(n int, noun string) string {
	if n == 0 {
		return fmt.Sprintf("No %ss detected.", noun)
	}
	return fmt.Sprintf("Detected %d %s(s).", n, noun)
}
