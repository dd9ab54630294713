package model

import (
	"encoding/xml"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
)

// ErrUnknownType is returned by Decode for unregistered element names.
var ErrUnknownType = errors.New("unknown object type")

// Factory returns a new zero object.
type Factory func() Object

// Element names of the built-in types.
var (
	MasterTypes  = []string{"Master"}
	AreaTypes    = []string{"Area"}
	LoadTypes    = []string{"Load"}
	RGBLoadTypes = []string{"Vantage.DGColorLoad", "Vantage.DDGColorLoad"}
	StationTypes = []string{
		"Keypad",
		"Dimmer",
		"DualRelayStation",
		"EqCtrl",
		"EqUX",
		"HighVoltageRelayStation",
		"LowVoltageRelayStation",
		"IRX2",
		"RS232Station",
		"RS485Station",
		"ScenePointRelay",
		"ContactInput",
	}
)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

func init() {
	for _, name := range MasterTypes {
		Register(name, func() Object { return &Master{} })
	}
	for _, name := range AreaTypes {
		Register(name, func() Object { return &Area{} })
	}
	for _, name := range LoadTypes {
		Register(name, func() Object { return &Load{} })
	}
	for _, name := range RGBLoadTypes {
		Register(name, func() Object { return &RGBLoad{} })
	}
	for _, name := range StationTypes {
		Register(name, func() Object { return &Station{} })
	}
}

// Register maps an element name to a factory, replacing any previous one.
func Register(elementName string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[elementName] = f
}

// Registered reports whether elementName has a factory.
func Registered(elementName string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[elementName]
	return ok
}

// ElementNames returns the registered element names, sorted.
func ElementNames() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return slices.Sorted(maps.Keys(registry))
}

// Decode decodes the element opened by start into a new object of the
// registered type. Unregistered names return ErrUnknownType and leave the
// decoder positioned after the element.
func Decode(d *xml.Decoder, start xml.StartElement) (Object, error) {
	registryMu.RLock()
	f, ok := registry[start.Name.Local]
	registryMu.RUnlock()

	if !ok {
		if err := d.Skip(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, start.Name.Local)
	}

	obj := f()
	if err := d.DecodeElement(obj, &start); err != nil {
		return nil, fmt.Errorf("decode %s: %w", start.Name.Local, err)
	}
	return obj, nil
}
