// Package task runs one upload through transcription and summary.
//
// An Orchestrator archives the source, consults the result cache, drives
// exactly one transcription adapter and one summarizer, persists every
// artifact under tasks/<id>/ and reports progress through a Reporter.
// Tasks share nothing in memory; the only shared state is the artifact
// storage that later cache lookups scan.
package task
