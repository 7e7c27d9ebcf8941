// Package workdir decides where service source code is loaded from.
//
// The working directory is either given explicitly, inferred from a bento
// reference that is itself a directory, or the current directory. The result
// is placed at the front of a [SearchPath], which the service loader consults
// when resolving relative references.
package workdir
