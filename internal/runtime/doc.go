/*
Package runtime drives the search: it executes the steps of a registry over
its layers, records every decision in a decision graph and backtracks when
a check fails.

A run is a sequence of attempts. Each attempt executes the steps in order,
skipping those still marked completed and, inside a step, the objects whose
decision is still live. A ConstraintNotSatisfied failure selects the
nearest revisable choice above the failing check, rejects its value and
undoes everything depending on it, in reverse dependency order. Any other
error ends the run.
*/
package runtime
