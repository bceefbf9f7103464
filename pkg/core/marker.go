package core

// Coordinates is a WGS84 position
type Coordinates struct {
	Lat float64 `json:"lat" yaml:"lat"`
	Lon float64 `json:"lon" yaml:"lon"`
}

// Property bag keys shared with the map engine
const (
	PropHintContent    = "hintContent"
	PropBalloonContent = "balloonContent"
	PropAddress        = "address"
	PropStatus         = "status"
	PropArea           = "area"
	PropType           = "type"
	PropCapacity       = "capacity"
	PropLicense        = "license"
	PropMaterials      = "materials"
	PropSchedule       = "schedule"
)

// Field is one category-specific detail, in display order.
type Field struct {
	Key   string
	Value string
}

// Details holds the fields that only exist for one category.
// Implementations: DumpDetails, PolygonDetails, ReceptionDetails.
type Details interface {
	Category() Category
	Fields() []Field
}

// DumpDetails describes an illegal dump
type DumpDetails struct {
	Area string `json:"area,omitempty"`
	Type string `json:"type,omitempty"`
}

func (DumpDetails) Category() Category { return CategoryDumps }

func (d DumpDetails) Fields() []Field {
	return []Field{{PropArea, d.Area}, {PropType, d.Type}}
}

// PolygonDetails describes a landfill polygon
type PolygonDetails struct {
	Capacity string `json:"capacity,omitempty"`
	License  string `json:"license,omitempty"`
}

func (PolygonDetails) Category() Category { return CategoryPolygons }

func (d PolygonDetails) Fields() []Field {
	return []Field{{PropCapacity, d.Capacity}, {PropLicense, d.License}}
}

// ReceptionDetails describes a waste-reception point
type ReceptionDetails struct {
	Materials string `json:"materials,omitempty"`
	Schedule  string `json:"schedule,omitempty"`
}

func (ReceptionDetails) Category() Category { return CategoryReceptions }

func (d ReceptionDetails) Fields() []Field {
	return []Field{{PropMaterials, d.Materials}, {PropSchedule, d.Schedule}}
}

// DetailsFromFields builds the details variant for c from a lookup function.
// Missing keys become empty strings.
func DetailsFromFields(c Category, get func(key string) string) Details {
	switch c {
	case CategoryPolygons:
		return PolygonDetails{Capacity: get(PropCapacity), License: get(PropLicense)}
	case CategoryReceptions:
		return ReceptionDetails{Materials: get(PropMaterials), Schedule: get(PropSchedule)}
	default:
		return DumpDetails{Area: get(PropArea), Type: get(PropType)}
	}
}

// MarkerProperties are the fields shown for a site
type MarkerProperties struct {
	HintContent    string  `json:"hintContent"`
	BalloonContent string  `json:"balloonContent"`
	Address        string  `json:"address"`
	Status         Status  `json:"status"`
	Details        Details `json:"details,omitempty"`
}

// Bag flattens the properties into the key/value form carried by placemarks.
// Empty values are left out so readers see them as missing.
func (p MarkerProperties) Bag() map[string]any {
	bag := make(map[string]any, 6)
	put := func(k, v string) {
		if v != "" {
			bag[k] = v
		}
	}
	put(PropHintContent, p.HintContent)
	put(PropBalloonContent, p.BalloonContent)
	put(PropAddress, p.Address)
	put(PropStatus, string(p.Status))
	if p.Details != nil {
		for _, f := range p.Details.Fields() {
			put(f.Key, f.Value)
		}
	}
	return bag
}

// MarkerRecord is one site of the static catalog. Records are never mutated
// after the catalog is loaded.
type MarkerRecord struct {
	Coordinates Coordinates      `json:"coordinates"`
	Properties  MarkerProperties `json:"properties"`
}

// ActiveMarkerInfo is what the popup shows. It is rebuilt from scratch on
// every click.
type ActiveMarkerInfo struct {
	HintContent    string  `json:"hintContent"`
	BalloonContent string  `json:"balloonContent"`
	Address        string  `json:"address,omitempty"`
	Details        Details `json:"details,omitempty"`
	ClusterSize    *int    `json:"clusterSize"`
	IsCluster      bool    `json:"isCluster,omitempty"`
}
