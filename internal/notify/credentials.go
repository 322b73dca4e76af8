package notify

import (
	"strings"

	"github.com/wardle-dev/lookout/internal/models"
)

// Pushover user keys and API tokens are exactly 30 characters.
const pushoverCredentialLength = 30

// CredentialSource records where a resolved credential came from, for
// diagnostics surfaces. Secrets themselves are only ever logged masked.
type CredentialSource string

const (
	SourceEnv    CredentialSource = "env"
	SourceStored CredentialSource = "stored"
	SourceNone   CredentialSource = "none"
)

// ResolvedCredential pairs a credential value with its source tag.
type ResolvedCredential struct {
	Value  string
	Source CredentialSource
}

// Valid reports whether the resolved value is shaped like a Pushover credential.
func (r ResolvedCredential) Valid() bool {
	return len(r.Value) == pushoverCredentialLength
}

// CredentialResolver implements the environment-overrides-stored priority
// rule for notification credentials: an environment value wins when it is
// validly shaped, otherwise the stored per-user value applies.
type CredentialResolver struct {
	stored      models.NotificationSettings
	envUserKey  string
	envAPIToken string
}

// NewCredentialResolver builds a resolver from stored settings and the
// process-wide environment credentials.
func NewCredentialResolver(stored models.NotificationSettings, envUserKey, envAPIToken string) *CredentialResolver {
	return &CredentialResolver{
		stored:      stored,
		envUserKey:  envUserKey,
		envAPIToken: envAPIToken,
	}
}

// EffectiveUserKey resolves the Pushover user key.
func (r *CredentialResolver) EffectiveUserKey() ResolvedCredential {
	return resolve(r.envUserKey, r.stored.PushoverUserKey)
}

// EffectiveAPIToken resolves the Pushover API token.
func (r *CredentialResolver) EffectiveAPIToken() ResolvedCredential {
	return resolve(r.envAPIToken, r.stored.PushoverAPIToken)
}

// PushoverEnabled reports whether the push channel is effectively enabled:
// the user flag is on and both resolved credentials are validly shaped.
func (r *CredentialResolver) PushoverEnabled() bool {
	return r.stored.PushoverEnabled && r.EffectiveUserKey().Valid() && r.EffectiveAPIToken().Valid()
}

// EmailEnabled reports whether the email channel is effectively enabled.
func (r *CredentialResolver) EmailEnabled() bool {
	addr := strings.TrimSpace(r.stored.EmailAddress)
	return r.stored.EmailEnabled && strings.Contains(addr, "@")
}

// EmailAddress returns the configured recipient address.
func (r *CredentialResolver) EmailAddress() string {
	return strings.TrimSpace(r.stored.EmailAddress)
}

func resolve(env, stored string) ResolvedCredential {
	if len(env) == pushoverCredentialLength {
		return ResolvedCredential{Value: env, Source: SourceEnv}
	}
	if stored != "" {
		return ResolvedCredential{Value: stored, Source: SourceStored}
	}
	return ResolvedCredential{Source: SourceNone}
}

// Mask returns a safe preview of a secret for logs and diagnostics: the
// first four characters followed by an ellipsis. Short values are fully
// masked.
func Mask(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return "****"
	}
	return secret[:4] + "..."
}
