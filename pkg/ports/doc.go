/*
Package ports defines the driven-side interfaces of Meridian:
persistence for the variable pool and session transcripts, and the
prompter the dispatcher uses to collect numeric input.

Adapters live under pkg/adapters. The contract test helpers in this
package let every adapter prove the same behavior.
*/
package ports
