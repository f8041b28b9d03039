// Package analyze extracts and plots one-dimensional profiles from exported
// state tables.
package analyze

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/gustavoverneck/LatteLab/io"
	"github.com/gustavoverneck/LatteLab/lbm"
)

type Quantity int

const (
	Density Quantity = iota
	VelocityX
	VelocityY
	VelocityZ
	Speed
	EndQuantity
)

var quantityNames = [EndQuantity]string{
	"Density", "VelocityX", "VelocityY", "VelocityZ", "Speed",
}

func (q Quantity) String() string {
	if q < 0 || q >= EndQuantity {
		return fmt.Sprintf("Quantity(%d)", int(q))
	}
	return quantityNames[q]
}

// QuantityFromString parses a quantity name, ignoring case.
func QuantityFromString(s string) (Quantity, bool) {
	for q := Quantity(0); q < EndQuantity; q++ {
		if strings.EqualFold(q.String(), strings.TrimSpace(s)) {
			return q, true
		}
	}
	return EndQuantity, false
}

// Value returns the quantity for a node with the given density and velocity.
func (q Quantity) Value(rho float64, u [3]float64) float64 {
	switch q {
	case Density:
		return rho
	case VelocityX, VelocityY, VelocityZ:
		return u[q-VelocityX]
	case Speed:
		return math.Sqrt(u[0]*u[0] + u[1]*u[1] + u[2]*u[2])
	}
	panic(fmt.Sprintf("Unrecognized quantity %d.", int(q)))
}

// AxisFromString converts "x", "y", or "z" to an axis index.
func AxisFromString(s string) (int, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "x":
		return 0, true
	case "y":
		return 1, true
	case "z":
		return 2, true
	}
	return -1, false
}

// Profile is a quantity sampled along a line of nodes parallel to one axis.
type Profile struct {
	Quantity  Quantity
	Axis      int
	At        [3]int // The coordinate along Axis is ignored.
	Positions []float64
	Values    []float64
}

type byPosition Profile

func (p *byPosition) Len() int           { return len(p.Positions) }
func (p *byPosition) Less(i, j int) bool { return p.Positions[i] < p.Positions[j] }
func (p *byPosition) Swap(i, j int) {
	p.Positions[i], p.Positions[j] = p.Positions[j], p.Positions[i]
	p.Values[i], p.Values[j] = p.Values[j], p.Values[i]
}

// ExtractProfile returns the profile of q along axis through the nodes whose
// other two coordinates match at. Solid nodes are skipped, since their
// density and velocity are never updated.
func ExtractProfile(
	rows *io.StateRows, q Quantity, axis int, at [3]int,
) (*Profile, error) {
	if axis < 0 || axis > 2 {
		return nil, fmt.Errorf("Axis must be 0, 1, or 2, but is %d.", axis)
	} else if q < 0 || q >= EndQuantity {
		return nil, fmt.Errorf("Unrecognized quantity %d.", int(q))
	}

	p := &Profile{Quantity: q, Axis: axis, At: at}
	p.At[axis] = 0
	for i := 0; i < rows.Len(); i++ {
		coords := [3]int{rows.X[i], rows.Y[i], rows.Z[i]}
		if rows.Flags[i] == lbm.Solid || !onLine(coords, at, axis) {
			continue
		}
		p.Positions = append(p.Positions, float64(coords[axis]))
		p.Values = append(p.Values, q.Value(rows.Rho[i], rows.U[i]))
	}

	if len(p.Positions) == 0 {
		return nil, fmt.Errorf(
			"No non-solid nodes lie on the line along axis %d through %v.",
			axis, at,
		)
	}
	sort.Sort((*byPosition)(p))
	return p, nil
}

func onLine(coords, at [3]int, axis int) bool {
	for k := 0; k < 3; k++ {
		if k != axis && coords[k] != at[k] {
			return false
		}
	}
	return true
}

// ReadProfile reads a state table and extracts a profile from it.
func ReadProfile(fname string, q Quantity, axis int, at [3]int) (*Profile, error) {
	rows, err := io.ReadStateRows(fname)
	if err != nil {
		return nil, err
	}
	p, err := ExtractProfile(rows, q, axis, at)
	if err != nil {
		return nil, fmt.Errorf("%s: %s", fname, err.Error())
	}
	return p, nil
}

// ReadProfiles reads the same profile from several state tables at once. The
// profiles are returned in the order of fnames.
func ReadProfiles(
	fnames []string, q Quantity, axis int, at [3]int,
) ([]*Profile, error) {
	profiles := make([]*Profile, len(fnames))
	g := errgroup.Group{}
	for i, fname := range fnames {
		i, fname := i, fname
		g.Go(func() error {
			p, err := ReadProfile(fname, q, axis, at)
			profiles[i] = p
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return profiles, nil
}

// Extremes returns the smallest and largest values of p.
func (p *Profile) Extremes() (min, max float64) {
	min, max = math.Inf(+1), math.Inf(-1)
	for _, v := range p.Values {
		min, max = math.Min(min, v), math.Max(max, v)
	}
	return min, max
}

// Normalized returns a copy of p with its values divided by norm.
func (p *Profile) Normalized(norm float64) *Profile {
	out := *p
	out.Positions = append([]float64{}, p.Positions...)
	out.Values = make([]float64, len(p.Values))
	for i := range out.Values {
		out.Values[i] = p.Values[i] / norm
	}
	return &out
}
