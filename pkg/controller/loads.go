package controller

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vantage-controls/vantage-go/pkg/interfaces"
	"github.com/vantage-controls/vantage-go/pkg/model"
)

// StatusTypeLoad is the STATUS type carrying load levels.
const StatusTypeLoad = "LOAD"

// Loads manages dimmable and switched loads.
type Loads struct {
	*Controller[*model.Load]

	load *interfaces.Load
}

// NewLoads creates the Loads controller.
func NewLoads(deps Deps) *Loads {
	l := &Loads{load: interfaces.NewLoad(deps.Invoker)}
	l.Controller = New(Definition[*model.Load]{
		Name:                 "loads",
		Types:                model.LoadTypes,
		StatusTypes:          []string{StatusTypeLoad},
		InterfaceStatusTypes: []string{interfaces.MethodLoadGetLevel},
		Hooks: Hooks[*model.Load]{
			FetchState:            l.fetchState,
			HandleStatus:          l.handleStatus,
			HandleInterfaceStatus: l.handleInterfaceStatus,
		},
	}, deps)
	return l
}

func (l *Loads) fetchState(ctx context.Context, obj *model.Load) (map[string]any, error) {
	level, err := l.load.GetLevel(ctx, obj.ID())
	if err != nil {
		return nil, err
	}
	return map[string]any{"level": level}, nil
}

// handleStatus applies "S:LOAD <vid> <level>"; the level is a plain
// decimal percentage.
func (l *Loads) handleStatus(obj *model.Load, statusType string, args []string) {
	if statusType != StatusTypeLoad || len(args) == 0 {
		return
	}
	level, err := decimal.NewFromString(args[0])
	if err != nil {
		l.logger.Warn("invalid load level", "vid", obj.ID(), "level", args[0])
		return
	}
	l.UpdateState(obj.ID(), map[string]any{"level": level})
}

func (l *Loads) handleInterfaceStatus(obj *model.Load, status interfaces.Response) {
	v, err := interfaces.LoadMethods.Parse(status)
	if err != nil {
		l.logger.Warn("invalid interface status", "vid", obj.ID(), "method", status.Method, "error", err)
		return
	}
	l.UpdateState(obj.ID(), map[string]any{"level": v})
}

// TurnOn sets a load to full.
func (l *Loads) TurnOn(ctx context.Context, vid int) error {
	return l.load.TurnOn(ctx, vid)
}

// TurnOff sets a load to zero.
func (l *Loads) TurnOff(ctx context.Context, vid int) error {
	return l.load.TurnOff(ctx, vid)
}

// SetLevel sets a load to level percent, clamped to 0-100.
func (l *Loads) SetLevel(ctx context.Context, vid int, level decimal.Decimal) error {
	return l.load.SetLevel(ctx, vid, clampPercent(level))
}

// Ramp moves a load to level over seconds.
func (l *Loads) Ramp(ctx context.Context, vid int, seconds, level decimal.Decimal) error {
	if seconds.IsNegative() {
		return fmt.Errorf("ramp time %s is negative", seconds)
	}
	return l.load.Ramp(ctx, vid, interfaces.RampFixed, seconds, clampPercent(level))
}

// On returns the loads whose last known level is above zero.
func (l *Loads) On() []*model.Load {
	return l.Filter((*model.Load).IsOn)
}

// Off returns the loads known to be at zero.
func (l *Loads) Off() []*model.Load {
	return l.Filter(func(obj *model.Load) bool { return obj.Level != nil && !obj.IsOn() })
}

// Relays returns the switched loads.
func (l *Loads) Relays() []*model.Load {
	return l.Filter((*model.Load).IsRelay)
}

// InArea returns the loads in the given area.
func (l *Loads) InArea(area int) []*model.Load {
	return l.Filter(func(obj *model.Load) bool { return obj.AreaID == area })
}

var hundred = decimal.NewFromInt(100)

func clampPercent(level decimal.Decimal) decimal.Decimal {
	return decimal.Max(decimal.Zero, decimal.Min(level, hundred))
}
