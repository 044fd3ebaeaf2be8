// Package app contains the core application logic. It defines the main App
// struct, its configuration, and the primary run lifecycle from pipeline
// loading through graph execution to the final report, decoupled from any
// specific entrypoint like a CLI.
package app
