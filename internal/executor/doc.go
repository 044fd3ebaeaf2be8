// Package executor dispatches a validated job graph. A fixed pool of
// workers drains a ready channel; a job is enqueued the moment its last
// dependency reaches a terminal state, so waiting is structural rather than
// polled. The worker consults the condition evaluator before starting a
// job, runs its steps strictly in order through the step runner boundary,
// and publishes outputs to the artifact store. The worker count is the
// global concurrency bound.
package executor
