package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/angelmondragon/lttsale-console/pkg/auth"
	"github.com/angelmondragon/lttsale-console/pkg/auth/session"
	pkgerrors "github.com/angelmondragon/lttsale-console/pkg/errors"
	"github.com/angelmondragon/lttsale-console/pkg/upstream"
	"github.com/angelmondragon/lttsale-console/pkg/validation"
)

// Client talks to the identity (SSO) service. Login and refresh go out without a bearer
// token and accept only code 200; everything else is authenticated.
type Client struct {
	public *upstream.Client
	api    *upstream.Client
}

// NewClient builds the identity client from an upstream client bound to a session's tokens.
func NewClient(api *upstream.Client) (*Client, error) {
	if api == nil {
		return nil, fmt.Errorf("identity upstream client required")
	}
	return &Client{
		public: api.WithTokens(nil).WithDecoder(upstream.StrictIdentityEnvelope),
		api:    api.WithDecoder(upstream.IdentityEnvelope{}),
	}, nil
}

const loginFailedMessage = "Login failed"

type tokenPayload struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Login exchanges credentials for a token pair. An HTTP 200 carrying a non-200 code is
// a failed login.
func (c *Client) Login(ctx context.Context, email, password string) (session.Tokens, error) {
	var payload tokenPayload
	err := c.public.Do(ctx, upstream.Request{
		Method: http.MethodPost,
		Path:   "/v1/auth/login",
		Body:   map[string]string{"email": email, "password": password},
	}, &payload)
	if err != nil {
		return session.Tokens{}, loginError(err)
	}
	if strings.TrimSpace(payload.AccessToken) == "" {
		return session.Tokens{}, pkgerrors.New(pkgerrors.CodeUnauthorized, loginFailedMessage+": invalid credentials")
	}
	return session.Tokens{AccessToken: payload.AccessToken, RefreshToken: payload.RefreshToken}, nil
}

// loginError reports backend rejections as credential failures. A rejection the
// backend did not explain reads "Login failed".
func loginError(err error) error {
	noMessage := errors.Is(err, upstream.ErrNoServerMessage)
	if !noMessage && !pkgerrors.IsCode(err, pkgerrors.CodeUpstream) {
		return err
	}
	code := pkgerrors.As(err).Code()
	if code == pkgerrors.CodeUpstream {
		code = pkgerrors.CodeUnauthorized
	}
	message := pkgerrors.MessageOf(err)
	if noMessage {
		message = loginFailedMessage
	}
	return pkgerrors.Wrap(code, err, message)
}

// RefreshToken trades a refresh token for a new pair.
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (session.Tokens, error) {
	var payload tokenPayload
	err := c.public.Do(ctx, upstream.Request{
		Method: http.MethodPost,
		Path:   "/v1/auth/refresh-token",
		Body:   map[string]string{"refresh_token": refreshToken},
	}, &payload)
	if err != nil {
		return session.Tokens{}, err
	}
	if strings.TrimSpace(payload.AccessToken) == "" {
		return session.Tokens{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "refresh response carried no access token")
	}
	return session.Tokens{AccessToken: payload.AccessToken, RefreshToken: payload.RefreshToken}, nil
}

// AccountPermissions lists the grants of an account.
func (c *Client) AccountPermissions(ctx context.Context, uid string) ([]auth.Permission, error) {
	var permissions []auth.Permission
	if err := c.get(ctx, "/v1/account/"+pathID(uid)+"/permissions", nil, &permissions); err != nil {
		return nil, err
	}
	return permissions, nil
}

// Profile loads the signed-in account.
func (c *Client) Profile(ctx context.Context, uid string) (*Profile, error) {
	var raw map[string]json.RawMessage
	if err := c.get(ctx, "/v1/account/"+pathID(uid), nil, &raw); err != nil {
		return nil, err
	}
	profile := profileFromAccount(raw, uid)
	return &profile, nil
}

// UpdateProfile changes the signed-in account's display name and phone.
func (c *Client) UpdateProfile(ctx context.Context, uid string, input ProfileInput) (*Profile, error) {
	if err := validation.Struct(input); err != nil {
		return nil, err
	}
	body := map[string]any{}
	if input.Name != nil {
		body["username"] = *input.Name
	}
	if input.Phone != nil {
		body["phone"] = *input.Phone
	}
	var raw map[string]json.RawMessage
	if err := c.send(ctx, http.MethodPut, "/v1/account/"+pathID(uid), body, &raw); err != nil {
		return nil, err
	}
	profile := profileFromAccount(raw, uid)
	return &profile, nil
}

func (c *Client) get(ctx context.Context, path string, params *ListParams, out any) error {
	req := upstream.Request{Method: http.MethodGet, Path: path}
	if params != nil {
		req.Query = params.query()
	}
	return c.api.Do(ctx, req, out)
}

func (c *Client) send(ctx context.Context, method, path string, body, out any) error {
	return c.api.Do(ctx, upstream.Request{Method: method, Path: path, Body: body}, out)
}

func pathID[T int64 | string](id T) string {
	return url.PathEscape(strings.TrimSpace(fmt.Sprint(id)))
}
