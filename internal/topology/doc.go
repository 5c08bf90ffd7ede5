// Package topology holds the declared resource graph.
//
// A [Template] is built once, single-threaded, before anything is applied.
// Every resource names its explicit dependencies; references embedded in its
// properties ([Ref] values and ${ID.Attr} substitution tokens) add implicit
// dependencies. Both kinds become edges of the underlying graph, which must
// stay acyclic. The rendered document lists resources, outputs and one valid
// apply order; resources without a path between them may be applied in
// parallel by the deploy engine.
package topology
