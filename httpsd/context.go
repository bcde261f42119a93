package httpsd

import "context"

type ctxKey int

const ctxKeyConnID ctxKey = iota

// WithConnID returns a new context that carries a connection ID.
func WithConnID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKeyConnID, id)
}

// ConnIDFrom extracts the connection ID from ctx. The handshake context
// carries it, so TLS callbacks can reach it through
// tls.ClientHelloInfo.Context.
func ConnIDFrom(ctx context.Context) (string, bool) {
	v := ctx.Value(ctxKeyConnID)
	if v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}
