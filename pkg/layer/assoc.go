package layer

import (
	"sort"

	"github.com/aretw0/archsynth/pkg/graph"
)

// Associate links objA of a with objB of b in both directions.
func Associate(a *Layer, objA graph.ID, b *Layer, objB graph.ID) {
	a.link(b.name, objA, objB)
	b.link(a.name, objB, objA)
}

// Dissociate removes the link in both directions.
func Dissociate(a *Layer, objA graph.ID, b *Layer, objB graph.ID) {
	a.unlink(b.name, objA, objB)
	b.unlink(a.name, objB, objA)
}

// Associated returns the objects of layer other linked to obj.
func (l *Layer) Associated(other string, obj graph.ID) []graph.ID {
	return append([]graph.ID(nil), l.assoc[assocKey{other, obj}]...)
}

// AssociatedLayers lists the layers obj is linked with, sorted.
func (l *Layer) AssociatedLayers(obj graph.ID) []string {
	var names []string
	for k, ids := range l.assoc {
		if k.obj == obj && len(ids) > 0 {
			names = append(names, k.layer)
		}
	}
	sort.Strings(names)
	return names
}

func (l *Layer) link(other string, obj, peer graph.ID) {
	k := assocKey{other, obj}
	for _, id := range l.assoc[k] {
		if id == peer {
			return
		}
	}
	l.assoc[k] = append(l.assoc[k], peer)
}

func (l *Layer) unlink(other string, obj, peer graph.ID) {
	k := assocKey{other, obj}
	ids := l.assoc[k][:0]
	for _, id := range l.assoc[k] {
		if id != peer {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		delete(l.assoc, k)
		return
	}
	l.assoc[k] = ids
}
