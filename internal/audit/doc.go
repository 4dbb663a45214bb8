// Package audit keeps the command journal: every line the operator entered,
// the command it resolved to and what happened to it.
//
// Entries live in the command_log table of the SQLite database opened by
// package database. Each process run gets its own run ID so the history of
// one session can be told apart from the next.
package audit
