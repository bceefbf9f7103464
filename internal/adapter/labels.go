package adapter

import "github.com/ecomap/wastemap/pkg/core"

// UnknownStatusLabel is shown for statuses missing from the label table
const UnknownStatusLabel = "Неизвестный статус"

var statusLabels = map[core.Category]map[core.Status]string{
	core.CategoryDumps: {
		core.StatusRemoved: "Свалочный очаг ликвидирован",
		core.StatusActive:  "Активный свалочный очаг",
		core.StatusAtWork:  "Идет ликвидация свалочного очага",
	},
	core.CategoryPolygons: {
		core.StatusRemoved: "Полигон закрыт",
		core.StatusActive:  "Полигон работает",
		core.StatusAtWork:  "Полигон временно не работает",
	},
	core.CategoryReceptions: {
		core.StatusRemoved: "Пункт закрыт",
		core.StatusActive:  "Пункт работает",
		core.StatusAtWork:  "Пункт временно не работает",
	},
}

// StatusLabel returns the human-readable status for a site of category c.
func StatusLabel(c core.Category, s core.Status) string {
	if label, ok := statusLabels[c][s]; ok {
		return label
	}
	return UnknownStatusLabel
}

// DefaultIconColor is used for statuses without a color of their own
const DefaultIconColor = "#AAAAAA"

var statusColors = map[core.Status]string{
	core.StatusActive:  "#FF0000",
	core.StatusAtWork:  "#ff7c53",
	core.StatusRemoved: "#00AA00",
}

// IconColor returns the placemark color for s.
func IconColor(s core.Status) string {
	if c, ok := statusColors[s]; ok {
		return c
	}
	return DefaultIconColor
}

// IconPreset returns the placemark icon preset for s.
func IconPreset(s core.Status) string {
	return "islands#" + string(s) + "Icon"
}

var fieldLabels = map[string]string{
	core.PropArea:      "Площадь",
	core.PropType:      "Тип отходов",
	core.PropCapacity:  "Мощность",
	core.PropLicense:   "Лицензия",
	core.PropMaterials: "Принимаемые материалы",
	core.PropSchedule:  "Режим работы",
}
