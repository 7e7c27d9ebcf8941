// Package dispatch decides which server a bento is launched with.
//
// The decision is made once per process. Inputs are resolved first (working
// directory, remote dependencies, bind address), then the service is loaded
// and classified:
//
//	legacy service, no name or its own name   -> full legacy HTTP server
//	legacy service, any other name            -> server for that runner only
//	current-style service                     -> current HTTP server
//
// The gRPC and standalone runner entry points skip the classification and
// only accept legacy services. Every resolution error is returned before a
// strategy runs; nothing is retried.
//
// Example usage:
//
//	d := dispatch.New(&service.ManifestLoader{}, server.NewLauncher(), st)
//	err := d.Run(ctx, dispatch.Request{
//	    BentoRef: ".",
//	    Depends:  []string{"iris_clf=tcp://10.0.0.5:3001"},
//	})
package dispatch
