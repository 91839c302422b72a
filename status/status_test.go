package status

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"deliveroo/belief"
	"deliveroo/config"
	"deliveroo/model"
)

func TestStatusEndpoint(t *testing.T) {
	Convey("Given a belief set with a self score and a cached partitioning", t, func() {
		b := belief.New(nil)
		b.UpdateFromYou(model.Agent{ID: "a1", Score: 42})
		b.SetPartitioning(map[string]string{"2,0": "a1", "4,0": "a1"})

		handler := NewHandler(b, config.CoOp)
		srv := httptest.NewServer(handler)
		defer srv.Close()

		Convey("GET /status reports the atomic-safe fields", func() {
			resp, err := http.Get(srv.URL + "/status")
			So(err, ShouldBeNil)
			defer resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusOK)

			var snap Snapshot
			So(json.NewDecoder(resp.Body).Decode(&snap), ShouldBeNil)
			So(snap.Mode, ShouldEqual, config.CoOp)
			So(snap.SelfScore, ShouldEqual, 42)
			So(snap.PartitionSize, ShouldEqual, 2)
		})
	})
}
