// Package models defines domain entities and persistence interfaces for the trackdeck catalog.
//
// Persistent entities are database-backed models with full lifecycle management:
//   - [Account] : A linked Spotify account with its access/refresh credential and expiry
//   - [Song] : A catalog track keyed by its Spotify id, with a unique share token
//   - [Playlist] : A named local collection sourced from one Spotify playlist reference
//
// Playlist↔Song membership lives in the playlist_songs join table and is managed by
// the repositories layer; re-asserting an existing membership is a no-op.
//
// All persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
