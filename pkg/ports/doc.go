/*
Package ports defines the interfaces between the search core and the
outside world.

# Key Interfaces

  - Engine and its capabilities (Narrower, BatchNarrower, Chooser,
    BatchChooser, Translator, Checker, BatchChecker, Resetter): the domain
    policies plugged into steps. A step decides statically, from the
    capabilities an engine implements, which call form it uses.
  - View: the tracked read access engines get to the layers. Every read is
    recorded as a dependency of the decision being made.
  - SnapshotStore: persistence of captured searches.
  - DistributedLocker: serialises concurrent solves of the same problem.
*/
package ports
