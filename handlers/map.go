package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"civicreport/models"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/golang/geo/r1"
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

const (
	expectedCells = 160
	minLevel      = 6
	maxLevel      = 16
)

type cellUnit struct {
	count  int64
	origin s2.CellID
}

type mapAggregator struct {
	level int
	cells map[s2.CellID]*cellUnit
}

// cellBaseLevel picks the S2 cell level so a viewport aggregates into
// roughly expectedCells clusters.
func cellBaseLevel(vp models.Viewport) int {
	minLL := s2.LatLngFromDegrees(vp.LatMin, vp.LonMin)
	maxLL := s2.LatLngFromDegrees(vp.LatMax, vp.LonMax)

	rect := s2.Rect{
		Lat: r1.Interval{Lo: minLL.Lat.Radians(), Hi: maxLL.Lat.Radians()},
		Lng: s1.Interval{Lo: minLL.Lng.Radians(), Hi: maxLL.Lng.Radians()},
	}
	vpArea := rect.Area()

	center := s2.CellIDFromLatLng(s2.LatLngFromDegrees(
		(vp.LatMin+vp.LatMax)/2, (vp.LonMin+vp.LonMax)/2))

	for lv := maxLevel; lv >= minLevel; lv-- {
		cell := s2.CellFromCellID(center.Parent(lv))
		if vpArea/cell.ApproxArea() < expectedCells {
			return lv
		}
	}
	return minLevel
}

func newMapAggregator(vp models.Viewport) *mapAggregator {
	return &mapAggregator{
		level: cellBaseLevel(vp),
		cells: make(map[s2.CellID]*cellUnit),
	}
}

func (a *mapAggregator) AddPoint(lat, lon float64) {
	pc := s2.CellIDFromLatLng(s2.LatLngFromDegrees(lat, lon))
	parent := pc.Parent(a.level)
	if _, ok := a.cells[parent]; !ok {
		a.cells[parent] = &cellUnit{}
	}
	a.cells[parent].count += 1
	a.cells[parent].origin = pc
}

func (a *mapAggregator) Results() []models.MapResult {
	results := make([]models.MapResult, 0, len(a.cells))
	for c, unit := range a.cells {
		ll := c.LatLng()
		// A lone report keeps its exact position instead of the cell center.
		if unit.count == 1 {
			ll = unit.origin.LatLng()
		}
		results = append(results, models.MapResult{
			Latitude:  ll.Lat.Degrees(),
			Longitude: ll.Lng.Degrees(),
			Count:     unit.count,
		})
	}
	return results
}

// MapReports returns report pins inside a viewport, clustered into S2 cells
// when the viewport is dense.
func (h *Handlers) MapReports(c *gin.Context) {
	vp, err := parseViewport(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	reports, err := h.store.ReportsInViewport(c.Request.Context(), vp)
	if err != nil {
		log.Errorf("Failed to query viewport reports: %v", err)
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Error: "failed to load map"})
		return
	}

	aggr := newMapAggregator(vp)
	for _, r := range reports {
		if r.Location == nil {
			continue
		}
		aggr.AddPoint(r.Location.Latitude, r.Location.Longitude)
	}
	c.JSON(http.StatusOK, aggr.Results())
}

func parseViewport(c *gin.Context) (models.Viewport, error) {
	var vp models.Viewport
	for _, q := range []struct {
		name string
		dest *float64
	}{
		{"latmin", &vp.LatMin},
		{"lonmin", &vp.LonMin},
		{"latmax", &vp.LatMax},
		{"lonmax", &vp.LonMax},
	} {
		v, err := strconv.ParseFloat(c.Query(q.name), 64)
		if err != nil {
			return vp, fmt.Errorf("%s must be a number", q.name)
		}
		*q.dest = v
	}
	return vp, nil
}
