package launch

import "fmt"

// Version of the generated gRPC stubs a server exposes.
type ProtocolVersion string

const (
	ProtocolV1       ProtocolVersion = "v1"
	ProtocolV1Alpha1 ProtocolVersion = "v1alpha1"
)

// Accepted protocol versions, in the order they are listed to users.
var ProtocolVersions = []ProtocolVersion{ProtocolV1, ProtocolV1Alpha1}

// Parses a protocol version.
func ParseProtocolVersion(s string) (ProtocolVersion, error) {
	for _, v := range ProtocolVersions {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrProtocolVersion, s)
}

// Qualified name of the inference service for this protocol version.
func (v ProtocolVersion) ServiceName() string {
	return "bentoml.grpc." + string(v) + ".BentoService"
}

// gRPC-specific toggles, passed through unevaluated. Zero values are unset.
type GRPCOptions struct {
	ProtocolVersion      ProtocolVersion
	Reflection           bool
	Channelz             bool
	MaxConcurrentStreams int
}
