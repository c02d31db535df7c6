/*
Package layer implements one stage of the transformation chain: a graph,
the parameter slots of its objects and the associations linking its
objects to objects of other layers.

Slots move through UNSET, CANDIDATES_KNOWN and VALUE_CHOSEN. Forward moves
go through the tracked setters (SetCandidates, SetValue), which only the
runtime calls while recording a decision. Backward moves are only possible
through an Untracked accessor, obtained explicitly with Layer.Untracked.
*/
package layer
