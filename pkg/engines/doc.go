// Package engines provides the built-in domain policies that problem files
// can reference by kind, and a registry to add custom ones.
//
// Narrowers: static, exclude. Choosers: first, last, cost.
// Translators: copy, proxy. Checkers: forbid, endpoints, distinct, capacity.
package engines
