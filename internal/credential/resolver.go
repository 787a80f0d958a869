// Package credential picks transport credentials for a remote endpoint.
//
// SSH endpoints try the usual identity files under ~/.ssh before falling
// back to the SSH agent. HTTP endpoints ask an external credential helper.
// Resolution never fails: anything that goes wrong yields a weaker
// credential, ultimately nil (anonymous).
package credential

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	gitssh "github.com/go-git/go-git/v5/plumbing/transport/ssh"
	"go.uber.org/zap"
)

// Kind is a set of credential types a transport accepts.
type Kind uint8

const (
	KindSSHKey Kind = 1 << iota
	KindUserPass
	KindDefault
)

// Has reports whether k includes other.
func (k Kind) Has(other Kind) bool {
	return k&other != 0
}

const (
	defaultSSHUser = "git"
	maxURLLength   = 2048
)

// identityFiles are probed in this order under the identity directory.
var identityFiles = []string{"id_ed25519", "id_rsa", "id_ecdsa"}

var helperSchemes = []string{"http://", "https://", "git://", "ssh://"}

var urlStripper = strings.NewReplacer(
	";", "",
	"|", "",
	"&", "",
	"$", "",
	"`", "",
	"\n", "",
	"\r", "",
)

// AgentFunc builds an auth method backed by an SSH agent.
type AgentFunc func(user string) (transport.AuthMethod, error)

// Resolver produces credentials for remote endpoints.
type Resolver struct {
	logger    *zap.Logger
	lookupEnv func(string) (string, bool)
	helper    Helper
	agent     AgentFunc
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger. Secrets are never logged.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithLookupEnv replaces os.LookupEnv for home directory discovery.
func WithLookupEnv(fn func(string) (string, bool)) Option {
	return func(r *Resolver) {
		if fn != nil {
			r.lookupEnv = fn
		}
	}
}

// WithHelper replaces the external credential helper.
func WithHelper(h Helper) Option {
	return func(r *Resolver) {
		if h != nil {
			r.helper = h
		}
	}
}

// WithAgent replaces the SSH agent fallback.
func WithAgent(fn AgentFunc) Option {
	return func(r *Resolver) {
		if fn != nil {
			r.agent = fn
		}
	}
}

// NewResolver creates a Resolver using the process environment, the
// `git credential fill` helper and the system SSH agent.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		logger:    zap.NewNop(),
		lookupEnv: os.LookupEnv,
		helper:    DefaultHelper,
		agent: func(user string) (transport.AuthMethod, error) {
			return gitssh.NewSSHAgentAuth(user)
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AllowedFor returns the credential kinds a transport protocol accepts.
func AllowedFor(protocol string) Kind {
	switch protocol {
	case "ssh":
		return KindSSHKey
	case "http", "https":
		return KindUserPass | KindDefault
	default:
		return KindDefault
	}
}

// ForURL resolves a credential for a remote URL. Local and anonymous
// protocols get nil without consulting keys or helpers.
func (r *Resolver) ForURL(ctx context.Context, rawURL string) transport.AuthMethod {
	ep, err := transport.NewEndpoint(rawURL)
	if err != nil {
		// The parse error quotes the raw URL, userinfo included.
		r.logger.Debug("unparseable remote url, using anonymous credentials")
		return nil
	}

	allowed := AllowedFor(ep.Protocol)
	if !allowed.Has(KindSSHKey) && !allowed.Has(KindUserPass) {
		return nil
	}

	user := ep.User
	if user == "" {
		user = defaultSSHUser
	}
	return r.Resolve(ctx, rawURL, user, allowed)
}

// Resolve produces exactly one credential for rawURL given the kinds the
// transport allows. It returns nil for anonymous access.
func (r *Resolver) Resolve(ctx context.Context, rawURL, username string, allowed Kind) transport.AuthMethod {
	if allowed.Has(KindSSHKey) {
		if username == "" {
			username = defaultSSHUser
		}
		return r.sshKey(username)
	}
	return r.userPass(ctx, rawURL)
}

func (r *Resolver) sshKey(user string) transport.AuthMethod {
	home := r.home()
	if home == "" {
		r.logger.Warn("could not determine home directory, trying ssh agent")
		return r.fromAgent(user)
	}

	dir := filepath.Join(home, ".ssh")
	for _, name := range identityFiles {
		private := filepath.Join(dir, name)
		if _, err := os.Stat(private); err != nil {
			continue
		}
		_, pubErr := os.Stat(private + ".pub")

		auth, err := gitssh.NewPublicKeysFromFile(user, private, "")
		if err != nil {
			r.logger.Debug("ssh identity unusable",
				zap.String("key", name),
				zap.Bool("has_public_key", pubErr == nil),
				zap.Error(err))
			continue
		}
		r.logger.Debug("using ssh identity",
			zap.String("key", name),
			zap.Bool("has_public_key", pubErr == nil))
		return auth
	}

	return r.fromAgent(user)
}

func (r *Resolver) fromAgent(user string) transport.AuthMethod {
	auth, err := r.agent(user)
	if err != nil || auth == nil {
		r.logger.Debug("ssh agent unavailable, using anonymous credentials", zap.Error(err))
		return nil
	}
	return auth
}

func (r *Resolver) userPass(ctx context.Context, rawURL string) transport.AuthMethod {
	sanitized, ok := SanitizeURL(rawURL)
	if !ok {
		r.logger.Debug("remote url not eligible for credential helper")
		return nil
	}

	out, err := r.helper.Fill(ctx, "url="+sanitized+"\n\n")
	if err != nil {
		r.logger.Debug("credential helper failed",
			zap.String("url", redactURL(sanitized)),
			zap.Error(err))
		return nil
	}

	username, password, ok := parseHelperOutput(out)
	if !ok {
		r.logger.Debug("credential helper returned no credentials",
			zap.String("url", redactURL(sanitized)))
		return nil
	}
	return &githttp.BasicAuth{Username: username, Password: password}
}

// redactURL drops the userinfo of rawURL so it can be logged. Unparseable
// input yields an empty string.
func redactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	u.User = nil
	return u.String()
}

func (r *Resolver) home() string {
	for _, key := range []string{"HOME", "USERPROFILE"} {
		if v, ok := r.lookupEnv(key); ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// SanitizeURL prepares a URL for a credential helper's stdin. It rejects
// schemes outside http/https/git/ssh, strips shell metacharacters and line
// breaks, and rejects results longer than 2048 bytes.
func SanitizeURL(rawURL string) (string, bool) {
	allowed := false
	for _, scheme := range helperSchemes {
		if strings.HasPrefix(rawURL, scheme) {
			allowed = true
			break
		}
	}
	if !allowed {
		return "", false
	}

	sanitized := urlStripper.Replace(rawURL)
	if len(sanitized) > maxURLLength {
		return "", false
	}
	return sanitized, true
}
