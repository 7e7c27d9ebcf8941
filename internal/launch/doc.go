// Package launch defines the hand-off between startup and the server.
//
// Startup resolves a [Target] and passes it to [Run], which invokes exactly
// one method of a [Strategies] implementation. The server package provides
// the default implementation; tests substitute their own.
package launch
