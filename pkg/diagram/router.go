// Orthogonal auto-routing between port anchors.
// Produces L/Z-shaped polylines; corners are rounded only at render time.

package diagram

import "math"

// RouterOptions configures the auto-router.
type RouterOptions struct {
	AlignThreshold float64 // below this per-axis delta, route as a straight segment
	MidRouteFactor float64 // fraction of the major delta at which the bend sits
	CornerRadius   float64 // rounding radius applied by RenderPath
}

// DefaultRouterOptions returns the standard routing parameters.
func DefaultRouterOptions() RouterOptions {
	return RouterOptions{
		AlignThreshold: 10,
		MidRouteFactor: 0.6,
		CornerRadius:   15,
	}
}

// Route computes the logical waypoints of an orthogonal path from start to
// end. The directions are the outward normals of the endpoint ports; they
// only break the tie when the horizontal and vertical deltas are equal.
//
// The result is deterministic: identical anchors and directions always
// produce identical waypoints, so recomputation after unrelated graph
// mutations is idempotent.
func (o RouterOptions) Route(start Point, startDir Direction, end Point, endDir Direction) []Point {
	dx := end.X - start.X
	dy := end.Y - start.Y
	adx := math.Abs(dx)
	ady := math.Abs(dy)

	// Effectively aligned on either axis: direct segment.
	if adx < o.AlignThreshold || ady < o.AlignThreshold {
		return []Point{start, end}
	}

	horizFirst := adx > ady
	if adx == ady {
		horizFirst = startDir.Horizontal()
	}

	if horizFirst {
		midX := start.X + dx*o.MidRouteFactor
		return []Point{
			start,
			{midX, start.Y},
			{midX, end.Y},
			end,
		}
	}
	midY := start.Y + dy*o.MidRouteFactor
	return []Point{
		start,
		{start.X, midY},
		{end.X, midY},
		end,
	}
}

// PathOp is the kind of a rendered path command.
type PathOp int

const (
	OpMove PathOp = iota
	OpLine
	OpQuad
)

// PathCommand is one step of a renderable path. For OpQuad, Ctrl is the
// quadratic Bézier control point (the logical corner).
type PathCommand struct {
	Op   PathOp
	Ctrl Point
	To   Point
}

// RenderPath converts logical waypoints into a drawable command sequence
// with rounded corners. A corner is rounded only when both adjacent
// segments have Manhattan length greater than twice the radius; shorter
// segments keep the sharp corner. The input slice is never modified.
func RenderPath(points []Point, radius float64) []PathCommand {
	if len(points) == 0 {
		return nil
	}
	cmds := []PathCommand{{Op: OpMove, To: points[0]}}
	for i := 1; i < len(points)-1; i++ {
		in := points[i].Sub(points[i-1])
		out := points[i+1].Sub(points[i])
		if in.Manhattan() <= radius*2 || out.Manhattan() <= radius*2 {
			cmds = append(cmds, PathCommand{Op: OpLine, To: points[i]})
			continue
		}
		inUnit := unit(in)
		outUnit := unit(out)
		enter := Point{points[i].X - inUnit.X*radius, points[i].Y - inUnit.Y*radius}
		exit := Point{points[i].X + outUnit.X*radius, points[i].Y + outUnit.Y*radius}
		cmds = append(cmds,
			PathCommand{Op: OpLine, To: enter},
			PathCommand{Op: OpQuad, Ctrl: points[i], To: exit},
		)
	}
	if len(points) > 1 {
		cmds = append(cmds, PathCommand{Op: OpLine, To: points[len(points)-1]})
	}
	return cmds
}

func unit(v Point) Point {
	length := math.Sqrt(v.X*v.X + v.Y*v.Y)
	if length == 0 {
		return Point{}
	}
	return Point{v.X / length, v.Y / length}
}
