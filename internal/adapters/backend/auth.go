package backend

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/gradebase/internal/domain/model"
)

const (
	pathToken    = "token/"
	pathRegister = "auth/register/"
)

// Register creates a teacher account. The confirmation field is checked by
// the caller and never sent.
func (c *Client) Register(ctx context.Context, r model.Registration) error {
	body := map[string]any{
		"username":   r.Username,
		"password":   r.Password,
		"first_name": r.FirstName,
		"last_name":  r.LastName,
		"email":      r.Email,
	}
	_, err := c.do(ctx, call{op: "auth.register", method: http.MethodPost, path: pathRegister, body: body})
	return err
}

// Login exchanges credentials for a token pair. When the client's credential
// provider can hold tokens, the pair is stored there.
func (c *Client) Login(ctx context.Context, cr model.Credentials) (model.TokenPair, error) {
	res, err := c.do(ctx, call{op: "auth.token", method: http.MethodPost, path: pathToken, body: cr})
	if err != nil {
		return model.TokenPair{}, err
	}
	var pair model.TokenPair
	if err := json.Unmarshal(res.body, &pair); err != nil || pair.Access == "" {
		if err == nil {
			err = errMissingAccess
		}
		return model.TokenPair{}, &Error{Op: "auth.token", Status: res.status, Kind: ErrTransport, Err: err}
	}
	if s, ok := c.creds.(interface{ Set(model.TokenPair) }); ok {
		s.Set(pair)
	}
	return pair, nil
}
