package controller

import (
	"slices"

	"github.com/vantage-controls/vantage-go/pkg/model"
)

// Areas manages the area tree.
type Areas struct {
	*Controller[*model.Area]
}

// NewAreas creates the Areas controller.
func NewAreas(deps Deps) *Areas {
	return &Areas{New(Definition[*model.Area]{
		Name:  "areas",
		Types: model.AreaTypes,
	}, deps)}
}

// Children returns the areas directly inside parent.
func (a *Areas) Children(parent int) []*model.Area {
	return a.Filter(func(obj *model.Area) bool { return obj.ParentID == parent })
}

// Root returns the top level area, the one whose parent is not cached.
func (a *Areas) Root() (*model.Area, bool) {
	known := a.KnownIDs()
	return a.First(func(obj *model.Area) bool {
		_, found := slices.BinarySearch(known, obj.ParentID)
		return !found
	})
}
