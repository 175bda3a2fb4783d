// Package logging wires typedb's packages into dragonboat's logger registry.
//
// Packages obtain their logger at package level with logger.GetLogger("store")
// and never care about formatting. Init replaces the default factory with one
// producing "LEVEL | component | message" lines on stderr and sets the level of
// all components listed in Components.
package logging
