package database

import (
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"github.com/ecomap/wastemap/pkg/core"
)

// MarkerRow is one catalog site. Position keeps the catalog order inside a
// category.
type MarkerRow struct {
	ID             uint    `json:"id" gorm:"primarykey;autoIncrement;"`
	Category       string  `json:"category" gorm:"size:32;index:idx_marker_category_position,priority:1"`
	Position       int     `json:"position" gorm:"index:idx_marker_category_position,priority:2"`
	Lat            float64 `json:"lat"`
	Lon            float64 `json:"lon"`
	HintContent    string  `json:"hintContent"`
	BalloonContent string  `json:"balloonContent"`
	Address        string  `json:"address"`
	Status         string  `json:"status" gorm:"size:32"`
	// Details holds the category specific fields as a key/value object
	Details datatypes.JSON `json:"details" gorm:"type:jsonb;default:'{}'"`
}

// TableName overrides the gorm default
func (*MarkerRow) TableName() string {
	return "markers"
}

// DatabaseModels is every table this package migrates
var DatabaseModels = []any{
	&MarkerRow{},
}

func rowFromRecord(c core.Category, position int, r core.MarkerRecord) (MarkerRow, error) {
	fields := map[string]string{}
	if r.Properties.Details != nil {
		for _, f := range r.Properties.Details.Fields() {
			if f.Value != "" {
				fields[f.Key] = f.Value
			}
		}
	}
	details, err := json.Marshal(fields)
	if err != nil {
		return MarkerRow{}, fmt.Errorf("encode details: %w", err)
	}

	return MarkerRow{
		Category:       string(c),
		Position:       position,
		Lat:            r.Coordinates.Lat,
		Lon:            r.Coordinates.Lon,
		HintContent:    r.Properties.HintContent,
		BalloonContent: r.Properties.BalloonContent,
		Address:        r.Properties.Address,
		Status:         string(r.Properties.Status),
		Details:        datatypes.JSON(details),
	}, nil
}

func (row MarkerRow) record() (core.Category, core.MarkerRecord, error) {
	c, err := core.ParseCategory(row.Category)
	if err != nil {
		return "", core.MarkerRecord{}, fmt.Errorf("row %d: %w", row.ID, err)
	}

	fields := map[string]string{}
	if len(row.Details) > 0 {
		if err := json.Unmarshal(row.Details, &fields); err != nil {
			return "", core.MarkerRecord{}, fmt.Errorf("row %d: decode details: %w", row.ID, err)
		}
	}

	return c, core.MarkerRecord{
		Coordinates: core.Coordinates{Lat: row.Lat, Lon: row.Lon},
		Properties: core.MarkerProperties{
			HintContent:    row.HintContent,
			BalloonContent: row.BalloonContent,
			Address:        row.Address,
			Status:         core.Status(row.Status),
			Details:        core.DetailsFromFields(c, func(k string) string { return fields[k] }),
		},
	}, nil
}
