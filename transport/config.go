package transport

import (
	"fmt"
	"strings"

	"connectrpc.com/connect"
)

// Wire protocols understood by the clients.
const (
	ProtocolGRPC    = "grpc"
	ProtocolGRPCWeb = "grpcweb"
	ProtocolConnect = "connect"
)

// Default endpoints of the Nuance Mix runtimes.
const (
	DefaultDialogEndpoint = "dlg.api.nuance.com:443"
	DefaultNLUEndpoint    = "nlu.api.nuance.com:443"
)

// Config addresses one remote runtime.
type Config struct {
	Endpoint string `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	Protocol string `json:"protocol,omitempty" yaml:"protocol,omitempty"`
}

// HostedEndpoint reports whether c targets one of the hosted Nuance Mix
// runtimes, which do not accept JSON payloads.
func (c *Config) HostedEndpoint() bool {
	host := strings.TrimPrefix(strings.TrimPrefix(c.Endpoint, "https://"), "http://")
	host = strings.TrimSuffix(strings.TrimSuffix(host, "/"), ":443")
	return host+":443" == DefaultDialogEndpoint || host+":443" == DefaultNLUEndpoint
}

// DefaultDialogConfig returns the dialog runtime defaults.
func DefaultDialogConfig() Config {
	return Config{Endpoint: DefaultDialogEndpoint, Protocol: ProtocolGRPC}
}

// DefaultNLUConfig returns the NLU runtime defaults.
func DefaultNLUConfig() Config {
	return Config{Endpoint: DefaultNLUEndpoint, Protocol: ProtocolGRPC}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Endpoint != "" {
		c.Endpoint = source.Endpoint
	}
	if source.Protocol != "" {
		c.Protocol = source.Protocol
	}
}

// BaseURL returns the endpoint as a URL. An endpoint without a scheme is
// assumed to be served over TLS.
func (c *Config) BaseURL() string {
	endpoint := strings.TrimRight(c.Endpoint, "/")
	if strings.Contains(endpoint, "://") {
		return endpoint
	}
	return "https://" + endpoint
}

func (c *Config) clientOptions() ([]connect.ClientOption, error) {
	opts := []connect.ClientOption{connect.WithProtoJSON()}
	switch strings.ToLower(c.Protocol) {
	case "", ProtocolGRPC:
		opts = append(opts, connect.WithGRPC())
	case ProtocolGRPCWeb, "grpc-web":
		opts = append(opts, connect.WithGRPCWeb())
	case ProtocolConnect:
	default:
		return nil, fmt.Errorf("unknown protocol %q", c.Protocol)
	}
	return opts, nil
}
