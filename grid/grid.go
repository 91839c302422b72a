// Package grid implements the pure grid geometry and A* pathfinder that the
// plan library uses to turn a destination into a sequence of moves.
//
// Uses a binary heap of search nodes keyed by f = g + h, with a visited set
// to avoid re-expanding closed nodes.
package grid

import (
	"container/heap"
	"errors"
	"fmt"

	"deliveroo/model"
)

// ErrPathNotFound is returned when no path exists between start and goal,
// or when either is non-walkable or occupied.
var ErrPathNotFound = errors.New("grid: path not found")

// Grid is an immutable width x height matrix of tile types. It never stores
// dynamic occupancy; callers pass an OccupiedSet into FindPath per call.
type Grid struct {
	width, height int
	tiles []model.TileType
	generators []model.Point
	deliveryZones []model.Point
}

// Tile is a single tile update as delivered by onMap.
type Tile struct {
	X, Y int
	Type model.TileType
}

// New builds an immutable Grid from a width, height and tile list.
func New(width, height int, tiles []Tile) *Grid {
	g := &Grid{
		width: width,
		height: height,
		tiles: make([]model.TileType, width*height),
	}
	for i := range g.tiles {
		g.tiles[i] = model.NonWalkable
	}
	for _, t := range tiles {
		if !g.InBounds(model.Point{X: t.X, Y: t.Y}) {
			continue
		}
		g.tiles[g.index(t.X, t.Y)] = t.Type
		switch t.Type {
		case model.ParcelGenerator:
			g.generators = append(g.generators, model.Point{X: t.X, Y: t.Y})
		case model.Delivery:
			g.deliveryZones = append(g.deliveryZones, model.Point{X: t.X, Y: t.Y})
		}
	}
	return g
}

func (g *Grid) index(x, y int) int { return y*g.width + x }

// Width and Height report the grid's dimensions.
func (g *Grid) Width() int { return g.width }
func (g *Grid) Height() int { return g.height }

// InBounds reports whether p lies within the grid.
func (g *Grid) InBounds(p model.Point) bool {
	return p.X >= 0 && p.X < g.width && p.Y >= 0 && p.Y < g.height
}

// TileAt returns the tile type at p. Out-of-bounds reads as NonWalkable.
func (g *Grid) TileAt(p model.Point) model.TileType {
	if !g.InBounds(p) {
		return model.NonWalkable
	}
	return g.tiles[g.index(p.X, p.Y)]
}

// Walkable reports whether p can be traversed, ignoring dynamic occupancy.
func (g *Grid) Walkable(p model.Point) bool {
	return g.TileAt(p) != model.NonWalkable
}

// Generators returns every parcel-generator tile.
func (g *Grid) Generators() []model.Point {
	return append([]model.Point(nil), g.generators...)
}

// DeliveryZones returns every delivery tile.
func (g *Grid) DeliveryZones() []model.Point {
	return append([]model.Point(nil), g.deliveryZones...)
}

// OccupiedSet is the dynamic obstacle set consulted by FindPath in addition
// to static walkability. Keys are "x,y" strings.
type OccupiedSet map[string]struct{}

// Path is the result of a successful FindPath call.
type Path struct {
	Moves []model.Move
	Cost int
}

var neighborMoves = [4]model.Move{model.Up, model.Down, model.Left, model.Right}

// searchNode is a single A* open-set entry.
type searchNode struct {
	pos model.Point
	g int
	h int
	parent *searchNode
	move model.Move // move taken from parent to reach pos
	order int // insertion order, for deterministic tie-break
	heapIdx int
}

func (n *searchNode) f() int { return n.g + n.h }

type openHeap []*searchNode

func (h openHeap) Len() int { return len(h) }
func (h openHeap) Less(i, j int) bool {
	if h[i].f() != h[j].f() {
		return h[i].f() < h[j].f()
	}
	return h[i].order < h[j].order
}
func (h openHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].heapIdx = i
	h[j].heapIdx = j
}
func (h *openHeap) Push(x any) {
	n := x.(*searchNode)
	n.heapIdx = len(*h)
	*h = append(*h, n)
}
func (h *openHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// Manhattan is the default heuristic for FindPath.
func Manhattan(a, b model.Point) int {
	return a.Manhattan(b)
}

// FindPath runs A* from start to goal using heuristic (Manhattan if nil).
// Neighbours excluded from expansion are non-walkable tiles or tiles present
// in occupied. Start and goal must themselves be walkable and unoccupied,
// pre-conditions; violating either yields ErrPathNotFound.
func (g *Grid) FindPath(start, goal model.Point, occupied OccupiedSet, heuristic func(a, b model.Point) int) (*Path, error) {
	if heuristic == nil {
		heuristic = Manhattan
	}
	if !g.Walkable(start) || isOccupied(occupied, start) {
		return nil, fmt.Errorf("%w: start %v unwalkable or occupied", ErrPathNotFound, start)
	}
	if !g.Walkable(goal) || isOccupied(occupied, goal) {
		return nil, fmt.Errorf("%w: goal %v unwalkable or occupied", ErrPathNotFound, goal)
	}
	if start == goal {
		return &Path{Moves: nil, Cost: 0}, nil
	}

	open := &openHeap{}
	heap.Init(open)
	insertionCounter := 0

	startNode := &searchNode{pos: start, g: 0, h: heuristic(start, goal), order: insertionCounter}
	insertionCounter++
	heap.Push(open, startNode)

	best := map[model.Point]*searchNode{start: startNode}
	closed := map[model.Point]bool{}

	for open.Len() > 0 {
		cur := heap.Pop(open).(*searchNode)
		if closed[cur.pos] {
			continue
		}
		if cur.pos == goal {
			return reconstruct(cur), nil
		}
		closed[cur.pos] = true

		for _, mv := range neighborMoves {
			next := mv.Apply(cur.pos)
			if closed[next] {
				continue
			}
			if !g.Walkable(next) || isOccupied(occupied, next) {
				continue
			}
			tentativeG := cur.g + 1
			if existing, ok := best[next]; ok && existing.g <= tentativeG {
				continue
			}
			node := &searchNode{
				pos: next,
				g: tentativeG,
				h: heuristic(next, goal),
				parent: cur,
				move: mv,
				order: insertionCounter,
			}
			insertionCounter++
			best[next] = node
			heap.Push(open, node)
		}
	}

	return nil, fmt.Errorf("%w: from %v to %v", ErrPathNotFound, start, goal)
}

func isOccupied(occupied OccupiedSet, p model.Point) bool {
	if occupied == nil {
		return false
	}
	_, ok := occupied[p.String()]
	return ok
}

func reconstruct(n *searchNode) *Path {
	moves := make([]model.Move, 0, n.g)
	for cur := n; cur.parent != nil; cur = cur.parent {
		moves = append(moves, cur.move)
	}
	// reverse
	for i, j := 0, len(moves)-1; i < j; i, j = i+1, j-1 {
		moves[i], moves[j] = moves[j], moves[i]
	}
	return &Path{Moves: moves, Cost: n.g}
}
