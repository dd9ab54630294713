// Package interfaces provides typed wrappers over INVOKE for the object
// interfaces (capabilities) controllers expose: Load, RGBLoad,
// ColorTemperature and Introspection.
//
// Each capability declares its methods in a Registry that maps the full
// method name ("Load.GetLevel") to a parser. Replies and status events are
// decoded by looking up the method name they carry, so one object type can
// mix several capabilities with Compose.
package interfaces
