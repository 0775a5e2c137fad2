// Package control holds the thermal regulation state machine and the actuation
// policy derived from it. Everything here is synchronous and free of I/O; the
// scheduler owns the single Controller and feeds it samples, commands and time.
package control
