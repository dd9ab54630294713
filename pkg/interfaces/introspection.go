package interfaces

import "context"

// Introspection method names.
const (
	MethodIntrospectionGetFirmwareVersion = "Introspection.GetFirmwareVersion"
)

// Firmware selects which firmware image a version query refers to.
type Firmware int

// Firmware images.
const (
	FirmwareKernel      Firmware = 0
	FirmwareApplication Firmware = 1
)

var firmwareNames = map[string]Firmware{
	"KERNEL":      FirmwareKernel,
	"APPLICATION": FirmwareApplication,
}

// ParseFirmware decodes a firmware selector from its code or name.
func ParseFirmware(token string) (Firmware, error) {
	return ParseEnum(token, firmwareNames)
}

// String returns the firmware name.
func (f Firmware) String() string {
	switch f {
	case FirmwareKernel:
		return "Kernel"
	case FirmwareApplication:
		return "Application"
	default:
		return "Unknown"
	}
}

// IntrospectionMethods declares the Introspection capability.
var IntrospectionMethods = NewRegistry(CapabilityIntrospection, map[string]Parser{
	"GetFirmwareVersion": stringResult,
})

// Introspection queries controller metadata.
type Introspection struct {
	inv Invoker
}

// NewIntrospection creates an Introspection interface.
func NewIntrospection(inv Invoker) *Introspection {
	return &Introspection{inv: inv}
}

// GetFirmwareVersion returns the version string of a firmware image.
func (i *Introspection) GetFirmwareVersion(ctx context.Context, vid int, fw Firmware) (string, error) {
	return callAs[string](ctx, i.inv, IntrospectionMethods, vid, MethodIntrospectionGetFirmwareVersion, int(fw))
}
