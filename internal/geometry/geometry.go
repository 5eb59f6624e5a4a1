// Package geometry provides a GeoJSON-backed geometry column type for GORM
// models, plus the bounding-box math used for region containment checks.
// Geometries are stored as GeoJSON text (WGS84 / EPSG:4326 coordinates).
package geometry

import (
	"database/sql/driver"
	"fmt"

	"github.com/goccy/go-json"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Geometry type names as they appear in GeoJSON.
const (
	TypePoint        = "Point"
	TypePolygon      = "Polygon"
	TypeMultiPolygon = "MultiPolygon"
)

// Geometry is a GeoJSON geometry object. Only Point, Polygon and
// MultiPolygon are produced by clients; anything else fails BBox.
type Geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// BoundingBox is an axis-aligned lng/lat box.
type BoundingBox struct {
	MinLng float64
	MinLat float64
	MaxLng float64
	MaxLat float64
}

// Contains reports whether b fully contains other.
func (b BoundingBox) Contains(other BoundingBox) bool {
	return b.MinLng <= other.MinLng && b.MaxLng >= other.MaxLng &&
		b.MinLat <= other.MinLat && b.MaxLat >= other.MaxLat
}

// Area returns the box area in square degrees. Used as the deterministic
// tie-break when several boundaries contain the same geometry.
func (b BoundingBox) Area() float64 {
	return (b.MaxLng - b.MinLng) * (b.MaxLat - b.MinLat)
}

// NewPoint returns a Point geometry at lng, lat.
func NewPoint(lng, lat float64) *Geometry {
	coords, _ := json.Marshal([2]float64{lng, lat})
	return &Geometry{Type: TypePoint, Coordinates: coords}
}

// NewPolygon returns a Polygon geometry from linear rings. The first ring
// is the exterior boundary.
func NewPolygon(rings [][][2]float64) *Geometry {
	coords, _ := json.Marshal(rings)
	return &Geometry{Type: TypePolygon, Coordinates: coords}
}

// NewMultiPolygon returns a MultiPolygon geometry.
func NewMultiPolygon(polygons [][][][2]float64) *Geometry {
	coords, _ := json.Marshal(polygons)
	return &Geometry{Type: TypeMultiPolygon, Coordinates: coords}
}

// BBox computes the bounding box of the geometry.
func (g *Geometry) BBox() (BoundingBox, error) {
	switch g.Type {
	case TypePoint:
		var pt [2]float64
		if err := json.Unmarshal(g.Coordinates, &pt); err != nil {
			return BoundingBox{}, fmt.Errorf("invalid point coordinates: %w", err)
		}
		return BoundingBox{MinLng: pt[0], MinLat: pt[1], MaxLng: pt[0], MaxLat: pt[1]}, nil
	case TypePolygon:
		var rings [][][2]float64
		if err := json.Unmarshal(g.Coordinates, &rings); err != nil {
			return BoundingBox{}, fmt.Errorf("invalid polygon coordinates: %w", err)
		}
		return bboxOfRings(rings)
	case TypeMultiPolygon:
		var polys [][][][2]float64
		if err := json.Unmarshal(g.Coordinates, &polys); err != nil {
			return BoundingBox{}, fmt.Errorf("invalid multipolygon coordinates: %w", err)
		}
		var box BoundingBox
		first := true
		for _, rings := range polys {
			rb, err := bboxOfRings(rings)
			if err != nil {
				return BoundingBox{}, err
			}
			if first {
				box = rb
				first = false
				continue
			}
			box = merge(box, rb)
		}
		if first {
			return BoundingBox{}, fmt.Errorf("empty multipolygon")
		}
		return box, nil
	default:
		return BoundingBox{}, fmt.Errorf("unsupported geometry type: %q", g.Type)
	}
}

func bboxOfRings(rings [][][2]float64) (BoundingBox, error) {
	var box BoundingBox
	first := true
	for _, ring := range rings {
		for _, pt := range ring {
			if first {
				box = BoundingBox{MinLng: pt[0], MinLat: pt[1], MaxLng: pt[0], MaxLat: pt[1]}
				first = false
				continue
			}
			if pt[0] < box.MinLng {
				box.MinLng = pt[0]
			}
			if pt[0] > box.MaxLng {
				box.MaxLng = pt[0]
			}
			if pt[1] < box.MinLat {
				box.MinLat = pt[1]
			}
			if pt[1] > box.MaxLat {
				box.MaxLat = pt[1]
			}
		}
	}
	if first {
		return BoundingBox{}, fmt.Errorf("empty geometry")
	}
	return box, nil
}

func merge(a, b BoundingBox) BoundingBox {
	if b.MinLng < a.MinLng {
		a.MinLng = b.MinLng
	}
	if b.MinLat < a.MinLat {
		a.MinLat = b.MinLat
	}
	if b.MaxLng > a.MaxLng {
		a.MaxLng = b.MaxLng
	}
	if b.MaxLat > a.MaxLat {
		a.MaxLat = b.MaxLat
	}
	return a
}

// Equal compares two geometries by serialized value.
func (g *Geometry) Equal(other *Geometry) bool {
	if g == nil || other == nil {
		return g == other
	}
	if g.Type != other.Type {
		return false
	}
	return string(g.Coordinates) == string(other.Coordinates)
}

// Value implements driver.Valuer, serializing the geometry as GeoJSON text.
func (g Geometry) Value() (driver.Value, error) {
	if g.Type == "" {
		return nil, nil
	}
	b, err := json.Marshal(g)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for GeoJSON text or bytes.
func (g *Geometry) Scan(value interface{}) error {
	if value == nil {
		*g = Geometry{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported geometry column value: %T", value)
	}
	if len(data) == 0 {
		*g = Geometry{}
		return nil
	}
	return json.Unmarshal(data, g)
}

// GormDBDataType ensures a usable column type for each database driver.
func (Geometry) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	switch db.Dialector.Name() {
	case "mysql":
		return "JSON"
	case "postgres":
		return "JSONB"
	case "sqlserver", "mssql":
		return "NVARCHAR(MAX)"
	case "sqlite":
		return "TEXT"
	}
	return "TEXT"
}
