/*
Package domain contains the core domain models for Meridian.

It defines the fundamental entities of the analysis console: Variables
(gridded time-series handles), ActionDescriptors (the catalog of
user-invocable operations), and transcript Entries (the replayable
"teaching command" trace). This package is kept pure and free of
external dependencies like I/O or persistence, following Hexagonal
Architecture principles.

# Key Entities

  - Variable: A named time series with an explicit time axis and bounds.
  - ActionDescriptor: One catalog action, keyed by an enumerated OpID
    so that display labels never drive dispatch.
  - Entry: One line of the append-only session transcript.
*/
package domain
