// Package hcl provides the concrete HCL implementation for pipeline
// loading. It is responsible for file parsing, schema decoding and
// HCL-to-model translation; condition and env expressions are carried into
// the model unevaluated.
package hcl
