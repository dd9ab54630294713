package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Master is a controller in the system.
type Master struct {
	Base

	SerialNumber int `xml:"SerialNumber" vantage:"serial_number"`

	FirmwareVersion string `xml:"-" vantage:"firmware_version,state"`
}

// Area is a location grouping other objects.
type Area struct {
	Base

	ParentID int `xml:"Area" vantage:"parent_id"`
}

// Station is a device on a station bus: keypads, dimmers, relay stations
// and similar.
type Station struct {
	Base

	AreaID       int    `xml:"Area" vantage:"area_id"`
	BusID        int    `xml:"Bus" vantage:"bus_id"`
	SerialNumber string `xml:"SerialNumber" vantage:"serial_number"`
}

// Load is a dimmable or switched load.
type Load struct {
	Base

	AreaID       int    `xml:"Area" vantage:"area_id"`
	LoadType     string `xml:"LoadType" vantage:"load_type"`
	PowerProfile int    `xml:"PowerProfile" vantage:"power_profile_id"`

	Level *decimal.Decimal `xml:"-" vantage:"level,state"`
}

// IsOn reports whether the load's last known level is above zero.
func (l *Load) IsOn() bool {
	return l.Level != nil && l.Level.IsPositive()
}

// IsRelay reports whether the load is switched rather than dimmed.
func (l *Load) IsRelay() bool {
	return strings.Contains(strings.ToLower(l.LoadType), "relay")
}

// Color types of an RGBLoad.
const (
	ColorTypeRGB  = "RGB"
	ColorTypeRGBW = "RGBW"
	ColorTypeHSL  = "HSL"
	ColorTypeHSIC = "HSIC"
	ColorTypeCCT  = "CCT"
)

// RGBLoad is a color load on a DALI or DMX gateway.
type RGBLoad struct {
	Base

	AreaID    int    `xml:"Area" vantage:"area_id"`
	ColorType string `xml:"ColorType" vantage:"color_type"`
	MinTemp   int    `xml:"MinTemp" vantage:"min_temp"`
	MaxTemp   int    `xml:"MaxTemp" vantage:"max_temp"`

	Level     *decimal.Decimal `xml:"-" vantage:"level,state"`
	HSL       []int            `xml:"-" vantage:"hsl,state"`
	RGB       []int            `xml:"-" vantage:"rgb,state"`
	RGBW      []int            `xml:"-" vantage:"rgbw,state"`
	ColorTemp *int             `xml:"-" vantage:"color_temp,state"`
}

// IsRGB reports whether the load takes RGB, RGBW or HSL colors.
func (l *RGBLoad) IsRGB() bool {
	switch strings.ToUpper(l.ColorType) {
	case ColorTypeRGB, ColorTypeRGBW, ColorTypeHSL, ColorTypeHSIC:
		return true
	}
	return false
}

// IsCCT reports whether the load is tunable white.
func (l *RGBLoad) IsCCT() bool {
	return strings.EqualFold(l.ColorType, ColorTypeCCT)
}

// IsOn reports whether the load's last known level is above zero.
func (l *RGBLoad) IsOn() bool {
	return l.Level != nil && l.Level.IsPositive()
}
