package calendar

import (
	"context"
	"encoding/json"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

// LoadToken reads a persisted OAuth token.
func LoadToken(path string) (*oauth2.Token, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read token file %s", path)
	}
	var token oauth2.Token
	if err := json.Unmarshal(buf, &token); err != nil {
		return nil, errors.Wrap(err, "decode token")
	}
	return &token, nil
}

// SaveToken persists an OAuth token, owner-readable only.
func SaveToken(path string, token *oauth2.Token) error {
	buf, err := json.Marshal(token)
	if err != nil {
		return errors.Wrap(err, "encode token")
	}
	if err := os.WriteFile(path, buf, 0600); err != nil {
		return errors.Wrapf(err, "write token file %s", path)
	}
	return nil
}

// FileTokenSource builds a refreshing token source from a persisted
// token. Refreshed tokens are not written back; the refresh token stays
// valid, so the file only needs rewriting after a new OAuth consent.
func FileTokenSource(ctx context.Context, cfg *oauth2.Config, path string) (oauth2.TokenSource, error) {
	token, err := LoadToken(path)
	if err != nil {
		return nil, err
	}
	return cfg.TokenSource(ctx, token), nil
}
