package interfaces

import "context"

// ColorTemperature method names.
const (
	MethodColorTemperatureGet = "ColorTemperature.Get"
	MethodColorTemperatureSet = "ColorTemperature.Set"
)

// ColorTemperatureMethods declares the ColorTemperature capability.
var ColorTemperatureMethods = NewRegistry(CapabilityColorTemperature, map[string]Parser{
	"Get": intResult,
	"Set": noResult,
})

// ColorTemperature controls tunable-white loads.
type ColorTemperature struct {
	inv Invoker
}

// NewColorTemperature creates a ColorTemperature interface.
func NewColorTemperature(inv Invoker) *ColorTemperature {
	return &ColorTemperature{inv: inv}
}

// Get returns the color temperature in Kelvin.
func (c *ColorTemperature) Get(ctx context.Context, vid int) (int, error) {
	return callAs[int](ctx, c.inv, ColorTemperatureMethods, vid, MethodColorTemperatureGet)
}

// Set sets the color temperature in Kelvin.
func (c *ColorTemperature) Set(ctx context.Context, vid, kelvin int) error {
	_, err := call(ctx, c.inv, ColorTemperatureMethods, vid, MethodColorTemperatureSet, kelvin)
	return err
}
