// Package depmap resolves which upstream dependencies are already running
// elsewhere.
//
// A service normally hosts its dependencies (runners, dependent services)
// in-process. When a deployment runs them separately, it passes their
// addresses in one of two forms:
//
//	--depends iris_clf=tcp://10.0.0.5:3001 --depends embed=tcp://10.0.0.6:3001
//	--runner-map '{"iris_clf": "tcp://10.0.0.5:3001"}'
//
// The token form is current; the JSON form predates it and is only read when
// no tokens are given.
package depmap
