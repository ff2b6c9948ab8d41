package consolesdk

// Session performs calls on behalf of one logged-in backend user.
type Session struct {
	client *SDKClient
	token  string
}

// NewSession wraps a bearer token obtained from LoginJSON.
func (c *SDKClient) NewSession(token string) *Session {
	return &Session{client: c, token: token}
}

// Token returns the bearer token.
func (s *Session) Token() string { return s.token }

// AuthHeaders returns the headers a caller must attach to talk to the backend
// directly as this user.
func (s *Session) AuthHeaders() map[string]string {
	return map[string]string{"Authorization": "Bearer " + s.token}
}
