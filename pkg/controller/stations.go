package controller

import "github.com/vantage-controls/vantage-go/pkg/model"

// Stations manages keypads, dimmers and other bus stations.
type Stations struct {
	*Controller[*model.Station]
}

// NewStations creates the Stations controller.
func NewStations(deps Deps) *Stations {
	return &Stations{New(Definition[*model.Station]{
		Name:  "stations",
		Types: model.StationTypes,
	}, deps)}
}

// InArea returns the stations in the given area.
func (s *Stations) InArea(area int) []*model.Station {
	return s.Filter(func(obj *model.Station) bool { return obj.AreaID == area })
}

// OnBus returns the stations on the given station bus.
func (s *Stations) OnBus(bus int) []*model.Station {
	return s.Filter(func(obj *model.Station) bool { return obj.BusID == bus })
}
