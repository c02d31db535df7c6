/*
Package observability exposes the progress of a search as Prometheus metrics.

Metrics are fed by domain.LifecycleHooks, so they can be combined with any
other hooks through LifecycleHooks.Merge:

	m := observability.NewMetrics(prometheus.NewRegistry())
	eng := archsynth.New(archsynth.WithLifecycleHooks(m.Hooks().Merge(myHooks)))
*/
package observability
