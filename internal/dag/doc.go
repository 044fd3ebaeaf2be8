// Package dag builds and validates the job dependency graph. It turns the
// ordered job declarations of a pipeline model into a Directed Acyclic
// Graph of nodes, rejects unresolved or cyclic dependencies before any job
// is dispatched, and computes the deterministic topological order the
// executor uses as dispatch priority.
package dag
