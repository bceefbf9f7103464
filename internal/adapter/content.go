package adapter

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/ecomap/wastemap/internal/mapengine"
	"github.com/ecomap/wastemap/pkg/core"
)

// Popup defaults for missing properties
const (
	DefaultHintContent = "Метка на карте"
	DefaultAddress     = "не указан"
	ClusterTitle       = "Свалочные очаги"
)

var clusterTemplate = template.Must(template.New("cluster").Parse(
	`<div class="cluster-content">` +
		`{{range $i, $m := .}}{{if $i}}<hr>{{end}}` +
		`<div class="cluster-marker">` +
		`<h4>{{$m.Title}}</h4>` +
		`<p>{{$m.Balloon}}</p>` +
		`<p><strong>Адрес:</strong> {{$m.Address}}</p>` +
		`{{range $m.Fields}}<p><strong>{{.Label}}:</strong> {{.Value}}</p>{{end}}` +
		`<p><strong>Статус:</strong> {{$m.Status}}</p>` +
		`</div>{{end}}</div>`,
))

type clusterMember struct {
	Title   string
	Balloon string
	Address string
	Fields  []labeledField
	Status  string
}

type labeledField struct {
	Label string
	Value string
}

func newClusterMember(index int, c core.Category, props mapengine.PropertyBag) clusterMember {
	m := clusterMember{
		Title:   props.String(core.PropHintContent),
		Balloon: props.String(core.PropBalloonContent),
		Address: props.String(core.PropAddress),
		Status:  StatusLabel(c, core.Status(props.String(core.PropStatus))),
	}
	if m.Title == "" {
		m.Title = fmt.Sprintf("Метка %d", index+1)
	}
	if m.Address == "" {
		m.Address = DefaultAddress
	}
	for _, f := range core.DetailsFromFields(c, props.String).Fields() {
		if f.Value == "" {
			continue
		}
		m.Fields = append(m.Fields, labeledField{Label: fieldLabels[f.Key], Value: f.Value})
	}
	return m
}

// ClusterContent renders the popup body listing every member of a cluster.
// Text is HTML-escaped.
func ClusterContent(c core.Category, members []mapengine.GeoObject) string {
	list := make([]clusterMember, len(members))
	for i, obj := range members {
		list[i] = newClusterMember(i, c, obj.Properties())
	}

	var b strings.Builder
	// the template is static and only ranges over plain strings
	_ = clusterTemplate.Execute(&b, list)
	return b.String()
}
