// Package registry holds the ordered layers and steps of one search run.
package registry
