package markers

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/goccy/go-yaml"

	"github.com/ecomap/wastemap/pkg/core"
)

// ErrInvalidCatalog is returned when a catalog document cannot be turned into records
var ErrInvalidCatalog = errors.New("invalid catalog")

//go:embed catalog.yaml
var embeddedCatalog []byte

var (
	embeddedOnce  sync.Once
	embeddedStore *Store
)

// Embedded returns the catalog compiled into the binary.
// It panics if the embedded document is malformed.
func Embedded() *Store {
	embeddedOnce.Do(func() {
		s, err := Parse(embeddedCatalog)
		if err != nil {
			panic(fmt.Sprintf("embedded catalog: %v", err))
		}
		embeddedStore = s
	})
	return embeddedStore
}

// LoadFile reads a catalog override from disk.
func LoadFile(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return s, nil
}

// catalogEntry mirrors one YAML list item. Every category field is optional
// here; the section it sits in decides which ones are kept.
type catalogEntry struct {
	Coords     []float64 `yaml:"coords"`
	Properties struct {
		HintContent    string `yaml:"hintContent"`
		BalloonContent string `yaml:"balloonContent"`
		Address        string `yaml:"address"`
		Status         string `yaml:"status"`
		Area           string `yaml:"area"`
		Type           string `yaml:"type"`
		Capacity       string `yaml:"capacity"`
		License        string `yaml:"license"`
		Materials      string `yaml:"materials"`
		Schedule       string `yaml:"schedule"`
	} `yaml:"properties"`
}

// Parse decodes a YAML catalog with one top-level section per category.
func Parse(data []byte) (*Store, error) {
	var doc map[string][]catalogEntry
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}

	records := make(map[core.Category][]core.MarkerRecord, len(doc))
	for section, entries := range doc {
		c, err := core.ParseCategory(section)
		if err != nil {
			return nil, fmt.Errorf("%w: section %q: %v", ErrInvalidCatalog, section, err)
		}
		list := make([]core.MarkerRecord, 0, len(entries))
		for i, e := range entries {
			r, err := e.record(c)
			if err != nil {
				return nil, fmt.Errorf("%w: %s[%d]: %v", ErrInvalidCatalog, section, i, err)
			}
			list = append(list, r)
		}
		records[c] = list
	}
	return New(records), nil
}

func (e catalogEntry) record(c core.Category) (core.MarkerRecord, error) {
	if len(e.Coords) != 2 {
		return core.MarkerRecord{}, fmt.Errorf("coords must be [lat, lon], got %d values", len(e.Coords))
	}
	lat, lon := e.Coords[0], e.Coords[1]
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return core.MarkerRecord{}, fmt.Errorf("coords out of range: %v", e.Coords)
	}

	p := e.Properties
	fields := map[string]string{
		core.PropArea:      p.Area,
		core.PropType:      p.Type,
		core.PropCapacity:  p.Capacity,
		core.PropLicense:   p.License,
		core.PropMaterials: p.Materials,
		core.PropSchedule:  p.Schedule,
	}
	details := core.DetailsFromFields(c, func(k string) string { return fields[k] })

	// a field that belongs to another category means the entry sits in the wrong section
	kept := make(map[string]bool)
	for _, f := range details.Fields() {
		kept[f.Key] = true
	}
	for k, v := range fields {
		if v != "" && !kept[k] {
			return core.MarkerRecord{}, fmt.Errorf("field %q does not belong to %s", k, c)
		}
	}

	return core.MarkerRecord{
		Coordinates: core.Coordinates{Lat: lat, Lon: lon},
		Properties: core.MarkerProperties{
			HintContent:    p.HintContent,
			BalloonContent: p.BalloonContent,
			Address:        p.Address,
			Status:         core.Status(p.Status),
			Details:        details,
		},
	}, nil
}
