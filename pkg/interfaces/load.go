package interfaces

import (
	"context"

	"github.com/shopspring/decimal"
)

// Load method names.
const (
	MethodLoadGetLevel = "Load.GetLevel"
	MethodLoadSetLevel = "Load.SetLevel"
	MethodLoadRamp     = "Load.Ramp"
)

// RampType selects how Load.Ramp moves the level.
type RampType int

// Ramp types.
const (
	RampOpposite RampType = 0
	RampStop     RampType = 2
	RampUp       RampType = 3
	RampDown     RampType = 4
	RampFixed    RampType = 6
)

var rampTypeNames = map[string]RampType{
	"OPPOSITE": RampOpposite,
	"STOP":     RampStop,
	"UP":       RampUp,
	"DOWN":     RampDown,
	"FIXED":    RampFixed,
}

// ParseRampType decodes a ramp type from its code or name.
func ParseRampType(token string) (RampType, error) {
	return ParseEnum(token, rampTypeNames)
}

// LoadMethods declares the Load capability.
var LoadMethods = NewRegistry(CapabilityLoad, map[string]Parser{
	"GetLevel": fixedResult,
	"SetLevel": noResult,
	"Ramp":     noResult,
})

// Load controls dimmable and switched loads.
type Load struct {
	inv Invoker
}

// NewLoad creates a Load interface.
func NewLoad(inv Invoker) *Load {
	return &Load{inv: inv}
}

// GetLevel returns the level of a load, 0 to 100 percent.
func (l *Load) GetLevel(ctx context.Context, vid int) (decimal.Decimal, error) {
	return callAs[decimal.Decimal](ctx, l.inv, LoadMethods, vid, MethodLoadGetLevel)
}

// SetLevel sets the level of a load, 0 to 100 percent.
func (l *Load) SetLevel(ctx context.Context, vid int, level decimal.Decimal) error {
	_, err := call(ctx, l.inv, LoadMethods, vid, MethodLoadSetLevel, level)
	return err
}

// Ramp moves a load to level over seconds.
func (l *Load) Ramp(ctx context.Context, vid int, ramp RampType, seconds, level decimal.Decimal) error {
	_, err := call(ctx, l.inv, LoadMethods, vid, MethodLoadRamp, int(ramp), seconds, level)
	return err
}

// TurnOn sets a load to full level.
func (l *Load) TurnOn(ctx context.Context, vid int) error {
	return l.SetLevel(ctx, vid, decimal.NewFromInt(100))
}

// TurnOff sets a load to zero.
func (l *Load) TurnOff(ctx context.Context, vid int) error {
	return l.SetLevel(ctx, vid, decimal.Zero)
}
