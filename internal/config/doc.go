// Package config defines the format-agnostic model of a pipeline: its
// settings, change categories and job declarations. The model is the single
// source of truth for the dag builder and the executor. Loading from a
// concrete syntax (HCL) lives in a separate package; validation here covers
// everything that can be checked before a single job is dispatched.
package config
