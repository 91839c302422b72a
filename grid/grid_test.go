package grid

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"deliveroo/model"
)

func rowGrid() *Grid {
	// S . P . D
	tiles := []Tile{
		{X: 0, Y: 0, Type: model.Walkable},
		{X: 1, Y: 0, Type: model.Walkable},
		{X: 2, Y: 0, Type: model.ParcelGenerator},
		{X: 3, Y: 0, Type: model.Walkable},
		{X: 4, Y: 0, Type: model.Delivery},
	}
	return New(5, 1, tiles)
}

func TestFindPath(t *testing.T) {
	Convey("Given the grid with a generator and delivery zone", t, func() {
		g := rowGrid()

		Convey("start == goal returns an empty path with cost 0", func() {
			path, err := g.FindPath(model.Point{X: 1, Y: 0}, model.Point{X: 1, Y: 0}, nil, nil)
			So(err, ShouldBeNil)
			So(path.Cost, ShouldEqual, 0)
			So(path.Moves, ShouldBeEmpty)
		})

		Convey("a reachable goal returns a minimal-cost path", func() {
			path, err := g.FindPath(model.Point{X: 0, Y: 0}, model.Point{X: 4, Y: 0}, nil, nil)
			So(err, ShouldBeNil)
			So(path.Cost, ShouldEqual, 4)
			So(path.Moves, ShouldResemble, []model.Move{model.Right, model.Right, model.Right, model.Right})
		})

		Convey("replaying the moves lands on goal", func() {
			start := model.Point{X: 0, Y: 0}
			goal := model.Point{X: 4, Y: 0}
			path, err := g.FindPath(start, goal, nil, nil)
			So(err, ShouldBeNil)

			cur := start
			for _, mv := range path.Moves {
				So(g.Walkable(cur), ShouldBeTrue)
				cur = mv.Apply(cur)
			}
			So(cur, ShouldEqual, goal)
		})

		Convey("an occupied goal tile fails with ErrPathNotFound", func() {
			occupied := OccupiedSet{"4,0": struct{}{}}
			_, err := g.FindPath(model.Point{X: 0, Y: 0}, model.Point{X: 4, Y: 0}, occupied, nil)
			So(err, ShouldNotBeNil)
		})

		Convey("a non-walkable start fails with ErrPathNotFound", func() {
			_, err := g.FindPath(model.Point{X: -1, Y: 0}, model.Point{X: 4, Y: 0}, nil, nil)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestLongestPath(t *testing.T) {
	Convey("Given a grid with one generator and one delivery zone", t, func() {
		g := rowGrid()

		Convey("LongestPath returns the cost between them", func() {
			So(g.LongestPath(), ShouldEqual, 2)
		})
	})

	Convey("Given a grid with fewer than two strategic points", t, func() {
		g := New(2, 1, []Tile{{X: 0, Y: 0, Type: model.Walkable}})

		Convey("LongestPath returns 0", func() {
			So(g.LongestPath(), ShouldEqual, 0)
		})
	})
}
