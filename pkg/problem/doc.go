// Package problem loads search problems from YAML or JSON files and builds
// them into an engine using an engines.Registry.
package problem
