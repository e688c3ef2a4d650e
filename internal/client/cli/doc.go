// Package cli is the tasksync command-line client.
//
// Every command is a thin call into the HTTP mutation API; credentials are
// persisted to the configured session file and refreshed transparently.
// `watch` keeps a realtime session open and redraws the task list and
// statistics whenever a broadcast is applied.
package cli
