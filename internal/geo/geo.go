package geo

import (
	"errors"
	"math"
	"strconv"
	"strings"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"

	"github.com/ecomap/wastemap/pkg/core"
)

// Clustering works in EPSG:3857 so that distances can be converted to screen
// pixels for a given zoom with a single scale factor.

// ErrInvalidCoordinates is returned when the coordinates are invalid
var ErrInvalidCoordinates = errors.New("invalid coordinates provided")

// half the width of the EPSG:3857 world in meters
const mercatorHalfExtent = 20037508.342789244

// TileSize is the pixel size of one map tile at zoom 0
const TileSize = 256

var (
	to3857 = wgs84.EPSG().Transform(4326, 3857)
	to4326 = wgs84.EPSG().Transform(3857, 4326)
)

// ParseCoordinates parses a "lat,lon" string into coordinates.
func ParseCoordinates(s string) (core.Coordinates, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return core.Coordinates{}, ErrInvalidCoordinates
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return core.Coordinates{}, ErrInvalidCoordinates
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return core.Coordinates{}, ErrInvalidCoordinates
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return core.Coordinates{}, ErrInvalidCoordinates
	}
	return core.Coordinates{Lat: lat, Lon: lon}, nil
}

// Point3857 projects WGS84 coordinates into a web mercator point
func Point3857(c core.Coordinates) geom.Point {
	x, y, _ := to3857(c.Lon, c.Lat, 0)
	return geom.NewPoint(geom.Coordinates{
		XY:   geom.XY{X: x, Y: y},
		Type: geom.DimXY,
	})
}

// Coordinates4326 converts a web mercator point back to WGS84.
// An empty point yields zero coordinates.
func Coordinates4326(p geom.Point) core.Coordinates {
	xy, ok := p.XY()
	if !ok {
		return core.Coordinates{}
	}
	lon, lat, _ := to4326(xy.X, xy.Y, 0)
	return core.Coordinates{Lat: lat, Lon: lon}
}

// MetersPerPixel returns the web mercator ground resolution at zoom.
func MetersPerPixel(zoom int) float64 {
	return 2 * mercatorHalfExtent / (TileSize * math.Exp2(float64(zoom)))
}

// PixelDistance is the on-screen distance between two web mercator points at zoom.
func PixelDistance(a, b geom.Point, zoom int) float64 {
	pa, okA := a.XY()
	pb, okB := b.XY()
	if !okA || !okB {
		return math.Inf(1)
	}
	return math.Hypot(pa.X-pb.X, pa.Y-pb.Y) / MetersPerPixel(zoom)
}

// Centroid returns the mean position of the given web mercator points.
func Centroid(points []geom.Point) geom.Point {
	var sx, sy float64
	var n int
	for _, p := range points {
		xy, ok := p.XY()
		if !ok {
			continue
		}
		sx += xy.X
		sy += xy.Y
		n++
	}
	if n == 0 {
		return geom.NewEmptyPoint(geom.DimXY)
	}
	return geom.NewPoint(geom.Coordinates{
		XY:   geom.XY{X: sx / float64(n), Y: sy / float64(n)},
		Type: geom.DimXY,
	})
}
