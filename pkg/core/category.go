package core

import (
	"errors"
	"fmt"
)

// ErrUnknownCategory is returned when a category name is not one of the known marker classes
var ErrUnknownCategory = errors.New("unknown category")

// Category selects a marker collection and the tables used to describe it
type Category string

const (
	CategoryDumps      Category = "dumps"
	CategoryPolygons   Category = "polygons"
	CategoryReceptions Category = "receptions"
)

// Categories returns every category in display order.
func Categories() []Category {
	return []Category{CategoryDumps, CategoryPolygons, CategoryReceptions}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryDumps, CategoryPolygons, CategoryReceptions:
		return true
	}
	return false
}

// ParseCategory converts a tab or URL name into a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}

// Status is the lifecycle state of a site. Values outside the known set are
// kept as-is and rendered with fallbacks.
type Status string

const (
	StatusActive  Status = "active"
	StatusAtWork  Status = "atWork"
	StatusRemoved Status = "removed"
)

// Known reports whether s is one of active, atWork or removed.
func (s Status) Known() bool {
	switch s {
	case StatusActive, StatusAtWork, StatusRemoved:
		return true
	}
	return false
}
