package adyen

import "errors"

// Environment selects which set of gateway base URLs is used.
type Environment string

const (
	EnvSandbox Environment = "sandbox"
	EnvLive    Environment = "live"
)

// ErrIncompleteCredentials is returned when a merchant account or API key is missing.
var ErrIncompleteCredentials = errors.New("adyen: api key and merchant account are required")

// Credentials holds the gateway account configuration for one platform-side
// account. It is an immutable value; copy it, never mutate it.
type Credentials struct {
	APIKey          string
	MerchantAccount string
	// HMACKey is the hex-encoded webhook signing secret. When empty, inbound
	// webhook authentication is bypassed entirely. See Authenticator.
	HMACKey     string
	Environment Environment
}

// Validate checks that the mandatory fields are present and the environment
// is one of the known names. Defaults to live when the environment is empty,
// matching the upstream integrations.
func (c Credentials) Validate() error {
	if c.APIKey == "" || c.MerchantAccount == "" {
		return ErrIncompleteCredentials
	}
	switch c.Environment {
	case EnvSandbox, EnvLive, "":
		return nil
	}
	return errors.New("adyen: unknown environment " + string(c.Environment))
}

func (c Credentials) environment() Environment {
	if c.Environment == "" {
		return EnvLive
	}
	return c.Environment
}
