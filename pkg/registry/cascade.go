package registry

import (
	"fmt"

	"github.com/aretw0/archsynth/pkg/graph"
	"github.com/aretw0/archsynth/pkg/layer"
)

// Delete removes an object together with everything derived from it:
// incident edges of a node, and associated objects of later layers,
// recursively. Objects are deleted child-first and edges before nodes, so
// every intermediate state is a valid graph. Associations towards earlier
// layers are dropped in both directions. It returns the deleted objects in
// deletion order.
func (r *Registry) Delete(layerName string, id graph.ID) ([]Ref, error) {
	li := r.Position(layerName)
	if li < 0 {
		return nil, fmt.Errorf("delete: unknown layer %q", layerName)
	}
	var deleted []Ref
	if err := r.cascade(li, id, &deleted); err != nil {
		return deleted, err
	}
	return deleted, nil
}

func (r *Registry) cascade(li int, id graph.ID, deleted *[]Ref) error {
	l := r.layers[li]
	obj, ok := l.Object(id)
	if !ok {
		return fmt.Errorf("delete %s/%d: %w", l.Name(), id, graph.ErrNotFound)
	}

	if !obj.IsEdge() {
		for _, e := range l.Graph().Incident(id) {
			if l.Graph().Has(e) {
				if err := r.cascade(li, e, deleted); err != nil {
					return err
				}
			}
		}
	}

	for _, other := range l.AssociatedLayers(id) {
		oi := r.Position(other)
		if oi < 0 {
			return fmt.Errorf("delete %s/%d: associated with unknown layer %q", l.Name(), id, other)
		}
		peer := r.layers[oi]
		for _, p := range l.Associated(other, id) {
			if oi > li && peer.Graph().Has(p) {
				if err := r.cascade(oi, p, deleted); err != nil {
					return err
				}
				continue
			}
			layer.Dissociate(l, id, peer, p)
		}
	}

	if err := l.Untracked().Delete(id); err != nil {
		return err
	}
	*deleted = append(*deleted, Ref{Layer: l.Name(), ID: id})
	return nil
}
