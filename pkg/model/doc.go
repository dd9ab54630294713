// Package model defines the managed objects of a controller's configuration.
//
// # Objects
//
// Each object type is a struct embedding Base and is decoded from the ACI
// configuration service's XML, where the element name is the object type:
//
//	<Load VID="118" Master="1" MTime="2023-01-01T00:00:00">
//	  <Name>Kitchen</Name>
//	  <Area>12</Area>
//	  <LoadType>Incandescent</LoadType>
//	</Load>
//
// Types are registered by element name (see Register and Decode). Several
// element names may share one Go type; Stations covers every station kind.
//
// # Fields
//
// Attributes that take part in change detection carry a `vantage` struct
// tag naming them:
//
//	Name  string           `xml:"Name" vantage:"name"`
//	Level *decimal.Decimal `xml:"-" vantage:"level,state"`
//
// Fields marked "state" hold live state fetched over Host Command and are
// never compared against configuration. The "mtime" field is likewise
// excluded from Diff. FieldsOf builds the table once per type.
package model
