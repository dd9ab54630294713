package controller

import (
	"context"

	"github.com/vantage-controls/vantage-go/pkg/interfaces"
	"github.com/vantage-controls/vantage-go/pkg/model"
)

// Masters manages the controllers of the system. Their firmware version is
// fetched on demand; there is no live status.
type Masters struct {
	*Controller[*model.Master]

	introspection *interfaces.Introspection
}

// NewMasters creates the Masters controller.
func NewMasters(deps Deps) *Masters {
	m := &Masters{introspection: interfaces.NewIntrospection(deps.Invoker)}
	m.Controller = New(Definition[*model.Master]{
		Name:  "masters",
		Types: model.MasterTypes,
		Hooks: Hooks[*model.Master]{
			FetchState: m.fetchState,
		},
	}, deps)
	return m
}

func (m *Masters) fetchState(ctx context.Context, obj *model.Master) (map[string]any, error) {
	version, err := m.introspection.GetFirmwareVersion(ctx, obj.ID(), interfaces.FirmwareApplication)
	if err != nil {
		return nil, err
	}
	return map[string]any{"firmware_version": version}, nil
}

// BySerial returns the master with the given serial number.
func (m *Masters) BySerial(serial int) (*model.Master, bool) {
	return m.First(func(obj *model.Master) bool { return obj.SerialNumber == serial })
}
