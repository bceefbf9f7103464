package adapter

import (
	"fmt"

	"github.com/ecomap/wastemap/internal/mapengine"
	"github.com/ecomap/wastemap/pkg/core"
)

// OnObjectClick handles the clusterer's click event. A placemark opens its
// own details; a cluster opens a listing of all its members.
func (a *Adapter) OnObjectClick(e mapengine.Event) {
	switch target := e.Get("target").(type) {
	case mapengine.Placemark:
		a.openPopup(a.placemarkInfo(target))
	case mapengine.Cluster:
		a.openPopup(a.clusterInfo(target))
	default:
		a.log.Debug("Ignoring click on unsupported target", "type", fmt.Sprintf("%T", target))
	}
}

func (a *Adapter) placemarkInfo(pm mapengine.Placemark) *core.ActiveMarkerInfo {
	props := pm.Properties()

	info := &core.ActiveMarkerInfo{
		HintContent:    props.String(core.PropHintContent),
		BalloonContent: props.String(core.PropBalloonContent),
		Address:        props.String(core.PropAddress),
		Details:        core.DetailsFromFields(a.category, props.String),
	}
	if info.HintContent == "" {
		info.HintContent = DefaultHintContent
	}
	if info.Address == "" {
		info.Address = DefaultAddress
	}
	return info
}

func (a *Adapter) clusterInfo(cl mapengine.Cluster) *core.ActiveMarkerInfo {
	members := cl.GeoObjects()
	size := len(members)

	a.log.Debug("Cluster clicked", "category", a.category, "size", size)

	return &core.ActiveMarkerInfo{
		HintContent:    ClusterTitle,
		BalloonContent: ClusterContent(a.category, members),
		ClusterSize:    &size,
		IsCluster:      true,
	}
}
