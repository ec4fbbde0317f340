package reactor

import (
	"sort"
	"strconv"
	"strings"
)

// Region is a constructive solid geometry expression over surface halfspaces.
type Region interface {
	// String renders the region in the engine's syntax.
	String() string
	// surfaceIDs appends the IDs of referenced surfaces.
	surfaceIDs(dst []int) []int
}

// Halfspace is one side of a surface.
type Halfspace struct {
	Surface  int
	Positive bool
}

func (h Halfspace) String() string {
	if h.Positive {
		return strconv.Itoa(h.Surface)
	}
	return "-" + strconv.Itoa(h.Surface)
}

func (h Halfspace) surfaceIDs(dst []int) []int {
	return append(dst, h.Surface)
}

// Intersection holds when every member holds.
type Intersection []Region

func (r Intersection) String() string {
	parts := make([]string, len(r))
	for i, member := range r {
		if _, isUnion := member.(Union); isUnion {
			parts[i] = "(" + member.String() + ")"
		} else {
			parts[i] = member.String()
		}
	}
	return strings.Join(parts, " ")
}

func (r Intersection) surfaceIDs(dst []int) []int {
	for _, member := range r {
		dst = member.surfaceIDs(dst)
	}
	return dst
}

// Union holds when any member holds.
type Union []Region

func (r Union) String() string {
	parts := make([]string, len(r))
	for i, member := range r {
		if _, isIntersection := member.(Intersection); isIntersection {
			parts[i] = "(" + member.String() + ")"
		} else {
			parts[i] = member.String()
		}
	}
	return strings.Join(parts, " | ")
}

func (r Union) surfaceIDs(dst []int) []int {
	for _, member := range r {
		dst = member.surfaceIDs(dst)
	}
	return dst
}

// Complement holds where Node does not.
type Complement struct {
	Node Region
}

func (c Complement) String() string {
	return "~(" + c.Node.String() + ")"
}

func (c Complement) surfaceIDs(dst []int) []int {
	return c.Node.surfaceIDs(dst)
}

// And intersects regions, flattening nested intersections.
func And(regions ...Region) Region {
	out := make(Intersection, 0, len(regions))
	for _, r := range regions {
		if inner, ok := r.(Intersection); ok {
			out = append(out, inner...)
			continue
		}
		out = append(out, r)
	}
	if len(out) == 1 {
		return out[0]
	}
	return out
}

// Or unites regions, flattening nested unions.
func Or(regions ...Region) Region {
	out := make(Union, 0, len(regions))
	for _, r := range regions {
		if inner, ok := r.(Union); ok {
			out = append(out, inner...)
			continue
		}
		out = append(out, r)
	}
	if len(out) == 1 {
		return out[0]
	}
	return out
}

// Not complements a region.
func Not(r Region) Region {
	return Complement{Node: r}
}

// SurfaceIDs returns the sorted, de-duplicated surface IDs a region uses.
func SurfaceIDs(r Region) []int {
	if r == nil {
		return nil
	}
	ids := r.surfaceIDs(nil)
	sort.Ints(ids)
	out := ids[:0]
	for i, id := range ids {
		if i == 0 || id != ids[i-1] {
			out = append(out, id)
		}
	}
	return out
}
