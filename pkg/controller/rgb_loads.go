package controller

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/vantage-controls/vantage-go/pkg/interfaces"
	"github.com/vantage-controls/vantage-go/pkg/model"
)

// rgbLoadMethods parses every interface status an RGB load reports.
var rgbLoadMethods = interfaces.Compose(
	interfaces.LoadMethods,
	interfaces.RGBLoadMethods,
	interfaces.ColorTemperatureMethods,
)

type colorKind struct {
	field    string
	channels int
}

var colorKinds = map[string]colorKind{
	interfaces.MethodRGBLoadGetHSL:  {field: "hsl", channels: 3},
	interfaces.MethodRGBLoadGetRGB:  {field: "rgb", channels: 3},
	interfaces.MethodRGBLoadGetRGBW: {field: "rgbw", channels: 4},
}

// RGBLoads manages color loads on DALI and DMX gateways.
type RGBLoads struct {
	*Controller[*model.RGBLoad]

	load        *interfaces.Load
	rgb         *interfaces.RGBLoad
	temperature *interfaces.ColorTemperature
	colors      *ColorAccumulator
}

// NewRGBLoads creates the RGBLoads controller.
func NewRGBLoads(deps Deps) *RGBLoads {
	l := &RGBLoads{
		load:        interfaces.NewLoad(deps.Invoker),
		rgb:         interfaces.NewRGBLoad(deps.Invoker),
		temperature: interfaces.NewColorTemperature(deps.Invoker),
		colors:      NewColorAccumulator(),
	}
	l.Controller = New(Definition[*model.RGBLoad]{
		Name:  "rgb_loads",
		Types: model.RGBLoadTypes,
		InterfaceStatusTypes: []string{
			interfaces.MethodLoadGetLevel,
			interfaces.MethodRGBLoadGetHSL,
			interfaces.MethodRGBLoadGetRGB,
			interfaces.MethodRGBLoadGetRGBW,
			interfaces.MethodColorTemperatureGet,
		},
		Hooks: Hooks[*model.RGBLoad]{
			FetchState:            l.fetchState,
			HandleInterfaceStatus: l.handleInterfaceStatus,
		},
	}, deps)
	return l
}

func (l *RGBLoads) fetchState(ctx context.Context, obj *model.RGBLoad) (map[string]any, error) {
	vid := obj.ID()
	state := make(map[string]any)

	level, err := l.load.GetLevel(ctx, vid)
	if err != nil {
		return nil, err
	}
	state["level"] = level

	if obj.IsRGB() {
		if state["hsl"], err = l.rgb.GetHSLColor(ctx, vid); err != nil {
			return nil, err
		}
		if state["rgb"], err = l.rgb.GetRGBColor(ctx, vid); err != nil {
			return nil, err
		}
		if state["rgbw"], err = l.rgb.GetRGBWColor(ctx, vid); err != nil {
			return nil, err
		}
	}

	if obj.IsCCT() {
		if state["color_temp"], err = l.temperature.Get(ctx, vid); err != nil {
			return nil, err
		}
	}
	return state, nil
}

func (l *RGBLoads) handleInterfaceStatus(obj *model.RGBLoad, status interfaces.Response) {
	v, err := rgbLoadMethods.Parse(status)
	if err != nil {
		l.logger.Warn("invalid interface status", "vid", obj.ID(), "method", status.Method, "error", err)
		return
	}

	switch status.Method {
	case interfaces.MethodLoadGetLevel:
		l.UpdateState(obj.ID(), map[string]any{"level": v})

	case interfaces.MethodColorTemperatureGet:
		if obj.IsCCT() {
			l.UpdateState(obj.ID(), map[string]any{"color_temp": v})
		}

	default:
		kind, ok := colorKinds[status.Method]
		if !ok || !obj.IsRGB() {
			return
		}
		ch, _ := v.(interfaces.ColorChannel)
		if color, done := l.colors.Add(obj.ID(), kind.field, kind.channels, ch); done {
			l.UpdateState(obj.ID(), map[string]any{kind.field: color})
		}
	}
}

// TurnOn sets a load to full.
func (l *RGBLoads) TurnOn(ctx context.Context, vid int) error {
	return l.load.TurnOn(ctx, vid)
}

// TurnOff sets a load to zero.
func (l *RGBLoads) TurnOff(ctx context.Context, vid int) error {
	return l.load.TurnOff(ctx, vid)
}

// SetLevel sets a load to level percent, clamped to 0-100.
func (l *RGBLoads) SetLevel(ctx context.Context, vid int, level decimal.Decimal) error {
	return l.load.SetLevel(ctx, vid, clampPercent(level))
}

// SetRGB sets an RGB color.
func (l *RGBLoads) SetRGB(ctx context.Context, vid, red, green, blue int) error {
	return l.rgb.SetRGB(ctx, vid, red, green, blue)
}

// SetRGBW sets an RGBW color.
func (l *RGBLoads) SetRGBW(ctx context.Context, vid, red, green, blue, white int) error {
	return l.rgb.SetRGBW(ctx, vid, red, green, blue, white)
}

// SetHSL sets an HSL color.
func (l *RGBLoads) SetHSL(ctx context.Context, vid, hue, saturation, lightness int) error {
	return l.rgb.SetHSL(ctx, vid, hue, saturation, lightness)
}

// SetColorTemp sets the color temperature of a tunable white load. The
// value must lie within the load's MinTemp and MaxTemp when those are set.
func (l *RGBLoads) SetColorTemp(ctx context.Context, vid, kelvin int) error {
	if obj, ok := l.Get(vid); ok && obj.MaxTemp > 0 {
		if kelvin < obj.MinTemp || kelvin > obj.MaxTemp {
			return fmt.Errorf("color temperature %dK outside %d-%dK", kelvin, obj.MinTemp, obj.MaxTemp)
		}
	}
	return l.temperature.Set(ctx, vid, kelvin)
}

// On returns the loads whose last known level is above zero.
func (l *RGBLoads) On() []*model.RGBLoad {
	return l.Filter((*model.RGBLoad).IsOn)
}

// Off returns the loads known to be at zero.
func (l *RGBLoads) Off() []*model.RGBLoad {
	return l.Filter(func(obj *model.RGBLoad) bool { return obj.Level != nil && !obj.IsOn() })
}
