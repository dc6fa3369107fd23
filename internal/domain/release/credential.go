package release

import "go.uber.org/zap/zapcore"

const (
	// SigningKeyEnv receives the private key in the bundler's environment.
	SigningKeyEnv = "TAURI_SIGNING_PRIVATE_KEY"
	// SigningPasswordEnv receives the key passphrase in the bundler's environment.
	SigningPasswordEnv = "TAURI_SIGNING_PRIVATE_KEY_PASSWORD"

	redacted = "[redacted]"
)

// Credential holds signing key material for one pipeline run.
// Its textual forms never include the key or the passphrase.
type Credential struct {
	key      string
	password string
}

// NewCredential wraps key material.
func NewCredential(key, password string) *Credential {
	return &Credential{key: key, password: password}
}

// Empty reports whether no key is present.
func (c *Credential) Empty() bool {
	return c == nil || c.key == ""
}

// Env returns the variables the bundler reads the key from.
// A nil or empty credential yields no variables.
func (c *Credential) Env() []string {
	if c.Empty() {
		return nil
	}

	return []string{
		SigningKeyEnv + "=" + c.key,
		SigningPasswordEnv + "=" + c.password,
	}
}

// String implements fmt.Stringer without exposing secrets.
func (c *Credential) String() string {
	if c.Empty() {
		return "credential(none)"
	}

	return "credential(" + redacted + ")"
}

// GoString implements fmt.GoStringer so %#v stays redacted.
func (c *Credential) GoString() string {
	return c.String()
}

// MarshalLogObject implements zapcore.ObjectMarshaler so structured logs stay redacted.
func (c *Credential) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddBool("present", !c.Empty())
	enc.AddBool("has_password", c != nil && c.password != "")

	return nil
}
