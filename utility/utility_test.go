package utility

import (
	"math"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"deliveroo/grid"
	"deliveroo/model"
)

func rowGrid() *grid.Grid {
	tiles := []grid.Tile{
		{X: 0, Y: 0, Type: model.Walkable},
		{X: 1, Y: 0, Type: model.Walkable},
		{X: 2, Y: 0, Type: model.ParcelGenerator},
		{X: 3, Y: 0, Type: model.Walkable},
		{X: 4, Y: 0, Type: model.Delivery},
	}
	return grid.New(5, 1, tiles)
}

func TestParcelUtility(t *testing.T) {
	Convey("Given a row grid with no threats", t, func() {
		s := Snapshot{
			Grid: rowGrid(),
			SelfPosition: model.Point{X: 0, Y: 0},
			MovementDurationMs: 100,
			DecayIntervalMs: 1000,
		}
		parcel := model.Parcel{ID: "p1", X: 2, Y: 0, Reward: 10}

		Convey("it returns a positive finite utility", func() {
			u := ParcelUtility(s, s.SelfPosition, parcel, nil)
			So(u, ShouldBeGreaterThan, 0)
			So(math.IsInf(u, -1), ShouldBeFalse)
		})

		Convey("an unreachable parcel returns NegInf", func() {
			isolated := grid.New(3, 3, []grid.Tile{{X: 0, Y: 0, Type: model.Walkable}})
			s2 := s
			s2.Grid = isolated
			u := ParcelUtility(s2, model.Point{X: 0, Y: 0}, model.Parcel{ID: "p2", X: 1, Y: 1, Reward: 5}, nil)
			So(u, ShouldEqual, NegInf)
		})
	})
}

func TestDeliveryUtility(t *testing.T) {
	Convey("Given carried reward and a reachable delivery zone", t, func() {
		s := Snapshot{
			Grid: rowGrid(),
			CarriedReward: 10,
			CarriedCount: 1,
			MovementDurationMs: 100,
			DecayIntervalMs: 1000,
		}
		Convey("utility is positive", func() {
			u := DeliveryUtility(s, model.Point{X: 3, Y: 0})
			So(u, ShouldBeGreaterThan, 0)
		})

		Convey("an unreachable delivery zone returns NegInf", func() {
			isolated := grid.New(2, 1, []grid.Tile{{X: 0, Y: 0, Type: model.Walkable}})
			s2 := s
			s2.Grid = isolated
			u := DeliveryUtility(s2, model.Point{X: 0, Y: 0})
			So(u, ShouldEqual, NegInf)
		})
	})
}

func TestParcelThreat(t *testing.T) {
	Convey("Given a competitor moving toward the parcel", t, func() {
		g := grid.New(3, 3, []grid.Tile{
			{X: 0, Y: 0, Type: model.Walkable}, {X: 1, Y: 0, Type: model.Walkable}, {X: 2, Y: 0, Type: model.Walkable},
			{X: 0, Y: 1, Type: model.Walkable}, {X: 1, Y: 1, Type: model.Walkable}, {X: 2, Y: 1, Type: model.Walkable},
			{X: 0, Y: 2, Type: model.Delivery}, {X: 1, Y: 2, Type: model.Walkable}, {X: 2, Y: 2, Type: model.ParcelGenerator},
		})
		s := Snapshot{Grid: g, MovementDurationMs: 100, DecayIntervalMs: 1000}
		parcel := model.Parcel{ID: "p1", X: 2, Y: 2, Reward: 5}
		// competitor at (1,2) moving right: x fractional part 0.6 => +1 direction
		competitor := model.Agent{ID: "rival", X: 1.6, Y: 2}

		Convey("threat is strictly positive and materially reduces target utility", func() {
			threat := ParcelThreat(s, parcel, []model.Agent{competitor})
			So(threat, ShouldBeGreaterThan, 0)

			withThreat := ParcelUtility(s, model.Point{X: 0, Y: 0}, parcel, []model.Agent{competitor})
			withoutThreat := ParcelUtility(s, model.Point{X: 0, Y: 0}, parcel, nil)
			So(withThreat, ShouldBeLessThan, withoutThreat)
		})
	})
}

func TestComputePartitioning(t *testing.T) {
	Convey("Given two generators and two agents on opposite sides", t, func() {
		g := grid.New(10, 10, twoCornerGeneratorTiles())
		agents := []AgentPosition{
			{AgentID: "A", Position: model.Point{X: 0, Y: 1}},
			{AgentID: "B", Position: model.Point{X: 9, Y: 8}},
		}

		Convey("each agent gets the nearer generator", func() {
			p := ComputePartitioning(g, agents, nil)
			So(p["0,0"], ShouldEqual, "A")
			So(p["9,9"], ShouldEqual, "B")
		})

		Convey("partitioning is deterministic across repeated calls", func() {
			p1 := ComputePartitioning(g, agents, nil)
			p2 := ComputePartitioning(g, agents, nil)
			So(p2, ShouldResemble, p1)
		})

		Convey("every generator maps to exactly one of the two agent ids", func() {
			p := ComputePartitioning(g, agents, nil)
			So(len(p), ShouldEqual, 2)
			for _, owner := range p {
				So(owner, ShouldBeIn, "A", "B")
			}
		})
	})
}

func twoCornerGeneratorTiles() []grid.Tile {
	tiles := make([]grid.Tile, 0, 100)
	for x := 0; x < 10; x++ {
		for y := 0; y < 10; y++ {
			tt := model.Walkable
			if x == 0 && y == 0 {
				tt = model.ParcelGenerator
			}
			if x == 9 && y == 9 {
				tt = model.ParcelGenerator
			}
			tiles = append(tiles, grid.Tile{X: x, Y: y, Type: tt})
		}
	}
	return tiles
}
