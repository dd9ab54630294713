// Package controller keeps local caches of configuration objects in sync
// with a controller.
//
// A Controller reconciles its cache against the configuration service on
// Initialize, emitting ObjectAdded, ObjectUpdated and ObjectDeleted to
// subscribers. Stateful controllers also fetch live state over Host Command
// and follow STATUS and enhanced-log traffic from an event stream.
//
// Masters, Areas, Stations, Loads and RGBLoads are the concrete controllers.
package controller
