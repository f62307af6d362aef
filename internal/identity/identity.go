// Package identity resolves bearer identity tokens to verified user ids.
package identity

import (
	"context"
	"errors"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
)

// ErrUnauthenticated is returned for missing, malformed, expired or
// otherwise unverifiable tokens.
var ErrUnauthenticated = errors.New("identity: unauthenticated")

// Verifier resolves an opaque bearer token to a stable user id.
type Verifier interface {
	Verify(ctx context.Context, idToken string) (string, error)
}

// Firebase verifies tokens against Firebase Auth. Verification results are
// not cached here; the SDK manages provider key caching itself.
type Firebase struct {
	client *auth.Client
}

func NewFirebase(ctx context.Context, projectID string) (*Firebase, error) {
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID})
	if err != nil {
		return nil, err
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, err
	}
	return &Firebase{client: client}, nil
}

func (f *Firebase) Verify(ctx context.Context, idToken string) (string, error) {
	if idToken == "" {
		return "", ErrUnauthenticated
	}
	tok, err := f.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", errors.Join(ErrUnauthenticated, err)
	}
	return tok.UID, nil
}

// Static maps fixed tokens to uids. Test use only.
type Static map[string]string

func (s Static) Verify(_ context.Context, idToken string) (string, error) {
	if uid, ok := s[idToken]; ok {
		return uid, nil
	}
	return "", ErrUnauthenticated
}
