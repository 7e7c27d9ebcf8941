// Package service loads bentos into their in-memory representation.
//
// The startup path only needs a handful of facts about a bento: which runtime
// it was built against ([Kind]), its declared name, the runners a legacy
// bento is composed of, and the config a current-style service declares for
// itself. [ManifestLoader] reads these from bento.yaml; alternative loaders
// implement [Loader].
//
// References are resolved against the working directory search path first,
// then against the local bento store:
//
//	svc, err := loader.Load(ctx, "iris_classifier:latest", searchPath)
package service
