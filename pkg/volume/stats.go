package volume

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Stats summarizes the voxel intensities of a volume.
type Stats struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Mean    float64 `json:"mean"`
	StdDev  float64 `json:"std_dev"`
	Nonzero int     `json:"nonzero"`
	Total   int     `json:"total"`
}

// Summarize computes intensity statistics over all voxels.
func (v *Volume) Summarize() Stats {
	s := Stats{
		Min:   math.Inf(1),
		Max:   math.Inf(-1),
		Total: len(v.data),
	}

	vals := make([]float64, len(v.data))
	for i, f := range v.data {
		val := float64(f)
		vals[i] = val
		if val < s.Min {
			s.Min = val
		}
		if val > s.Max {
			s.Max = val
		}
		if val != 0 {
			s.Nonzero++
		}
	}

	s.Mean, s.StdDev = stat.MeanStdDev(vals, nil)
	if math.IsNaN(s.StdDev) {
		// Single-voxel volumes have no sample variance.
		s.StdDev = 0
	}
	return s
}
