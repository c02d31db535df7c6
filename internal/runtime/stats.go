package runtime

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/aretw0/archsynth/pkg/domain"
)

// Stats returns the statistics of the search so far.
func (c *Controller) Stats() domain.Stats {
	s := c.stats
	s.Decisions = c.graph.Len()
	s.CutOff = new(big.Int).Set(c.stats.CutOff)
	s.SearchSpace = c.searchSpace()
	if !c.started.IsZero() {
		s.Duration = time.Since(c.started)
	}
	return s
}

// searchSpace multiplies the candidate set sizes of the live choices.
func (c *Controller) searchSpace() *big.Int {
	product := big.NewInt(1)
	found := false
	for _, n := range c.graph.Nodes() {
		if n.Op != domain.OpChoose {
			continue
		}
		l, ok := c.reg.Layer(n.Layer)
		if !ok {
			continue
		}
		if size := l.Slot(n.Object(), n.Param).Candidates.Len(); size > 0 {
			product.Mul(product, big.NewInt(int64(size)))
			found = true
		}
	}
	if !found {
		return big.NewInt(0)
	}
	return product
}

// Report summarises the search and the final layer contents.
func (c *Controller) Report(err error) domain.Report {
	r := domain.Report{
		Outcome: domain.OutcomeSuccess,
		Backend: string(c.graph.Kind()),
		Stats:   c.Stats(),
	}
	if err != nil {
		r.Outcome = domain.OutcomeFailed
		if errors.Is(err, domain.ErrSearchExhausted) {
			r.Outcome = domain.OutcomeExhausted
		}
		r.Error = err.Error()
	}
	for _, l := range c.reg.Layers() {
		sum := domain.LayerSummary{
			Name:   l.Name(),
			Nodes:  len(l.Graph().Nodes()),
			Edges:  len(l.Graph().Edges()),
			Values: make(map[string]map[string]any),
		}
		seen := make(map[string]bool)
		for _, id := range l.Graph().Objects() {
			obj, _ := l.Object(id)
			label := obj.Label()
			if seen[label] {
				label = fmt.Sprintf("%s#%d", label, id)
			}
			seen[label] = true
			for _, p := range l.Params(id) {
				if v, ok := l.Value(id, p); ok {
					if sum.Values[label] == nil {
						sum.Values[label] = make(map[string]any)
					}
					sum.Values[label][p] = v
				}
			}
		}
		r.Layers = append(r.Layers, sum)
	}
	return r
}
