// Package remote implements the client-side auth provider and document store over the Backend gRPC service.
package remote

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"os"

	"github.com/and161185/barkcard/internal/api"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

// DialConfig selects the server and transport security.
type DialConfig struct {
	Addr               string
	CACert             string
	InsecureSkipVerify bool
	// Plaintext disables TLS entirely; development only.
	Plaintext bool
}

// bearerCreds attaches the current access token to every call.
type bearerCreds struct {
	token  func() string
	secure bool
}

func (b bearerCreds) GetRequestMetadata(context.Context, ...string) (map[string]string, error) {
	tok := b.token()
	if tok == "" {
		return nil, nil
	}
	return map[string]string{"authorization": "Bearer " + tok}, nil
}

func (b bearerCreds) RequireTransportSecurity() bool { return b.secure }

func loadTLS(cfg DialConfig) (credentials.TransportCredentials, error) {
	switch {
	case cfg.Plaintext:
		return insecure.NewCredentials(), nil
	case cfg.InsecureSkipVerify:
		return credentials.NewTLS(&tls.Config{InsecureSkipVerify: true}), nil //nolint:gosec // dev flag
	case cfg.CACert == "":
		return credentials.NewClientTLSFromCert(nil, ""), nil
	}
	pem, err := os.ReadFile(cfg.CACert)
	if err != nil {
		return nil, err
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(pem) {
		return nil, errors.New("bad CA cert")
	}
	return credentials.NewTLS(&tls.Config{RootCAs: pool}), nil
}

// Dial opens a connection whose calls carry the token returned by token at call time.
func Dial(ctx context.Context, cfg DialConfig, token func() string, extra ...grpc.DialOption) (*grpc.ClientConn, error) {
	creds, err := loadTLS(cfg)
	if err != nil {
		return nil, err
	}
	opts := []grpc.DialOption{
		grpc.WithTransportCredentials(creds),
		grpc.WithPerRPCCredentials(bearerCreds{token: token, secure: !cfg.Plaintext}),
	}
	opts = append(opts, extra...)
	//nolint:staticcheck // DialContext is supported through 1.x; migrate when grpc.NewClient is stable
	return grpc.DialContext(ctx, cfg.Addr, opts...)
}

// Client bundles the collaborators the session layer consumes.
type Client struct {
	Auth *Auth
	Docs *Documents
	conn *grpc.ClientConn
}

// Connect dials the server and wires an Auth restored from store.
func Connect(ctx context.Context, cfg DialConfig, store *SessionStore, log *zap.Logger, extra ...grpc.DialOption) (*Client, error) {
	var auth *Auth
	token := func() string {
		if auth == nil {
			return ""
		}
		return auth.Token()
	}
	cc, err := Dial(ctx, cfg, token, extra...)
	if err != nil {
		return nil, err
	}
	backend := api.NewBackendClient(cc)
	auth = NewAuth(backend, store, log)
	return &Client{Auth: auth, Docs: NewDocuments(backend, log), conn: cc}, nil
}

// Close releases the connection.
func (c *Client) Close() error { return c.conn.Close() }
