package model

import "encoding/xml"

// Object is a managed configuration object.
type Object interface {
	// ID returns the object's vid.
	ID() int

	// ObjectType returns the XML element name the object was decoded from.
	ObjectType() string

	// Common returns the attributes shared by all objects.
	Common() *Base
}

// Base holds the attributes every object carries.
type Base struct {
	XMLName xml.Name

	VID         int    `xml:"VID,attr" vantage:"id"`
	MasterID    int    `xml:"Master,attr" vantage:"master_id"`
	MTime       string `xml:"MTime,attr" vantage:"mtime"`
	Name        string `xml:"Name" vantage:"name"`
	DisplayName string `xml:"DName" vantage:"display_name"`
	Model       string `xml:"Model" vantage:"model"`
	Note        string `xml:"Note" vantage:"note"`
}

// ID returns the vid.
func (b *Base) ID() int { return b.VID }

// ObjectType returns the XML element name.
func (b *Base) ObjectType() string { return b.XMLName.Local }

// Common returns b.
func (b *Base) Common() *Base { return b }

// DisplayNameOrName returns the display name if set, else the name.
func (b *Base) DisplayNameOrName() string {
	if b.DisplayName != "" {
		return b.DisplayName
	}
	return b.Name
}
