package analyze

import (
	"fmt"
	"math"
	"path"
	"strings"

	plt "github.com/phil-mansfield/pyplot"
)

var (
	colors     = []string{"r", "b", "g", "m", "c", "k"}
	axisLabels = []string{"$x$", "$y$", "$z$"}
)

// PlotProfiles queues a figure of the given profiles, written to fname, on
// the pyplot script. The script runs when plt.Execute is called. Profiles
// should share a quantity and axis.
func PlotProfiles(fname, title string, profiles ...*Profile) error {
	if len(profiles) == 0 {
		return fmt.Errorf("No profiles to plot in %s.", fname)
	}
	q, axis := profiles[0].Quantity, profiles[0].Axis
	for _, p := range profiles[1:] {
		if p.Quantity != q || p.Axis != axis {
			return fmt.Errorf(
				"Profiles of %s along axis %d and %s along axis %d cannot "+
					"share a figure.", q, axis, p.Quantity, p.Axis,
			)
		}
	}

	plt.Figure()
	for i, p := range profiles {
		plt.Plot(p.Positions, p.Values, plt.LW(3), plt.C(colors[i%len(colors)]))
	}

	if title == "" {
		title = strings.TrimSuffix(path.Base(fname), path.Ext(fname))
	}
	plt.Title(title)
	plt.XLabel(axisLabels[axis]+" [lattice units]", plt.FontSize(16))
	plt.YLabel(q.String(), plt.FontSize(16))
	plt.XLim(positionRange(profiles))
	plt.Grid(plt.Axis("y"))
	plt.SaveFig(fname)
	return nil
}

// positionRange returns the smallest and largest positions over profiles.
func positionRange(profiles []*Profile) (lo, hi float64) {
	lo, hi = profiles[0].Positions[0], profiles[0].Positions[0]
	for _, p := range profiles {
		lo = math.Min(lo, p.Positions[0])
		hi = math.Max(hi, p.Positions[len(p.Positions)-1])
	}
	return lo, hi
}
