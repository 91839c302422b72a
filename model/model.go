// Package model holds the data types shared across every component of the
// decision core: grid geometry, sensed entities, predicates/intentions, and
// the session-config types carried in from the sensor stream.
package model

import "fmt"

// Point is an integer grid coordinate.
type Point struct {
	X, Y int
}

func (p Point) String() string {
	return fmt.Sprintf("%d,%d", p.X, p.Y)
}

// Manhattan returns the L1 distance between p and q.
func (p Point) Manhattan(q Point) int {
	return abs(p.X-q.X) + abs(p.Y-q.Y)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// Move is one primitive step on the grid.
type Move int

const (
	Up Move = iota
	Down
	Left
	Right
)

func (m Move) String() string {
	switch m {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "unknown"
	}
}

// Apply returns the point reached by taking m from p.
func (m Move) Apply(p Point) Point {
	switch m {
	case Up:
		return Point{p.X, p.Y + 1}
	case Down:
		return Point{p.X, p.Y - 1}
	case Left:
		return Point{p.X - 1, p.Y}
	case Right:
		return Point{p.X + 1, p.Y}
	default:
		return p
	}
}

// TileType enumerates the canonical tile dialect: the legacy
// 1=Walkable,2=Delivery encoding is not implemented here.
type TileType int

const (
	NonWalkable TileType = iota
	ParcelGenerator
	Delivery
	Walkable
)

// Agent is a sensed or self agent. Position is fractional while moving;
// see IsMoving/MovementDirection.
type Agent struct {
	ID string
	Name string
	X, Y float64
	Score int
	Penalty *int // observed but unused by any operation in this repo
}

// Position truncates the agent's fractional coordinates to its resting tile.
func (a Agent) Position() Point {
	return Point{int(a.X), int(a.Y)}
}

// IsMoving reports whether a has a non-zero fractional coordinate.
func IsMoving(a Agent) bool {
	return fracPart(a.X) != 0 || fracPart(a.Y) != 0
}

// MovementDirection decodes the (dx, dy) unit vector from the fractional
// sign convention: frac > 0.5 => +1, frac < 0.5 => -1.
func MovementDirection(a Agent) (dx, dy int) {
	dx = directionFromFrac(fracPart(a.X))
	dy = directionFromFrac(fracPart(a.Y))
	return
}

func directionFromFrac(frac float64) int {
	if frac == 0 {
		return 0
	}
	if frac > 0.5 {
		return 1
	}
	return -1
}

func fracPart(v float64) float64 {
	return v - float64(int(v))
}

// Parcel is a sensed parcel, as reported by the sensor stream.
type Parcel struct {
	ID string
	X, Y int
	Reward int
	CarriedBy string // empty if unowned
}

func (p Parcel) Position() Point {
	return Point{p.X, p.Y}
}

// PredicateType enumerates the desire/goal shapes the option generator can
// produce and the plan library can execute.
type PredicateType int

const (
	Pickup PredicateType = iota
	Deliver
	Exploration
	GoTo
)

func (t PredicateType) String() string {
	switch t {
	case Pickup:
		return "pickup"
	case Deliver:
		return "deliver"
	case Exploration:
		return "exploration"
	case GoTo:
		return "goto"
	default:
		return "unknown"
	}
}

// Predicate is a candidate (or committed) goal. ParcelID is set iff
// Type == Pickup.
type Predicate struct {
	Type PredicateType
	Destination Point
	ParcelID string
	Utility float64
}

// Equal compares two predicates ignoring Utility, per the intention queue's
// duplicate-push rule.
func (p Predicate) Equal(other Predicate) bool {
	return p.Type == other.Type &&
		p.Destination == other.Destination &&
		p.ParcelID == other.ParcelID
}

// Interval is the compact `\d+(ms|s|m|h)?` or `infinite` encoding used by
// GameConfig fields. Infinite intervals carry a zero Duration
// and must be checked via IsInfinite before use — never silently treated as
// a very large duration.
type Interval struct {
	Duration int64 // milliseconds; meaningless when Infinite
	IsInfinite bool
}

// GameConfig is the one-shot session configuration delivered by onConfig.
type GameConfig struct {
	MapFile string
	ParcelsGenerationInterval Interval
	ParcelsMax int
	MovementSteps int
	MovementDuration int64 // ms per grid step
	AgentsObservationDistance int
	ParcelsObservationDistance int
	AgentTimeout Interval
	ParcelRewardAvg float64
	ParcelRewardVariance float64
	ParcelDecadingInterval Interval
	RandomlyMovingAgents bool
	AgentSpeed float64
	Clock int64 // ms tick, informational
}
