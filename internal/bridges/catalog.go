package bridges

import (
	"fmt"
	"os"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// Catalog loads the inventory file once and serves it from memory. A failed
// load is retried on the next call.
type Catalog struct {
	path    string
	mu      sync.Mutex
	bridges []Bridge
	loaded  bool
}

func NewCatalog(path string) *Catalog {
	return &Catalog{path: path}
}

func (c *Catalog) All() ([]Bridge, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loaded {
		return c.bridges, nil
	}

	f, err := os.Open(c.path)
	if err != nil {
		return nil, fmt.Errorf("open bridge inventory: %w", err)
	}
	defer f.Close()

	bridges, err := Parse(f)
	if err != nil {
		return nil, err
	}
	if bridges == nil {
		bridges = []Bridge{}
	}

	c.bridges, c.loaded = bridges, true
	logrus.WithFields(logrus.Fields{"path": c.path, "bridges": len(bridges)}).Info("Bridge inventory loaded")
	return c.bridges, nil
}

// FeatureCollection renders bridges as GeoJSON points in lon/lat order.
func FeatureCollection(bridges []Bridge) (*geojson.FeatureCollection, error) {
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(bridges))}
	for _, b := range bridges {
		pt, err := geom.NewPoint(geom.XY).SetCoords(geom.Coord{b.Long, b.Lat})
		if err != nil {
			return nil, fmt.Errorf("bridge %s: %w", b.ID, err)
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       b.ID,
			Geometry: pt,
			Properties: map[string]interface{}{
				"name":      b.Name,
				"condition": b.Condition,
				"yearBuilt": b.YearBuilt,
				"location":  b.Location,
				"owner":     b.Owner,
			},
		})
	}
	return fc, nil
}
