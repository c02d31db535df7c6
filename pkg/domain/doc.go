/*
Package domain contains the core vocabulary of the search engine.

It is kept free of I/O and of the engine internals so that adapters (stores,
transports, presentation) can depend on it without pulling in the runtime.

# Key Entities

  - Set: an ordered set of candidate parameter values.
  - OpKind and DecisionRef: a portable description of one recorded decision.
  - ConstraintNotSatisfied, SearchExhausted, ContractViolation: the error taxonomy.
  - Stats and Report: search statistics and the final outcome.
  - LifecycleHooks: observability callbacks fired by the controller.
*/
package domain
