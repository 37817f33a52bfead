package capability

import (
	"context"
	"fmt"

	"gocloud.dev/runtimevar"

	// Register the AWS Secrets Manager, GCP Secret Manager and constant
	// runtimevar drivers. The wrapped DEK is an opaque named secret in an
	// external store, exactly the shape runtimevar models.
	_ "gocloud.dev/runtimevar/awssecretsmanager"
	_ "gocloud.dev/runtimevar/constantvar"
	_ "gocloud.dev/runtimevar/gcpsecretmanager"
)

// VariableSecretFetcher implements SecretFetcher by reading a single
// gocloud.dev/runtimevar variable's current value on every call. The
// variable is expected to hold raw bytes (the wrapped DEK ciphertext).
type VariableSecretFetcher struct {
	variable *runtimevar.Variable
}

// NewSecretFetcher opens a runtimevar.Variable for variableURL (e.g.
// "awssecretsmanager://my-dek-secret") and returns a SecretFetcher backed
// by it.
func NewSecretFetcher(ctx context.Context, variableURL string) (*VariableSecretFetcher, error) {
	variable, err := runtimevar.OpenVariable(ctx, variableURL)
	if err != nil {
		return nil, fmt.Errorf("open secret variable: %w", err)
	}
	return &VariableSecretFetcher{variable: variable}, nil
}

func (s *VariableSecretFetcher) FetchSecret(ctx context.Context) ([]byte, error) {
	snapshot, err := s.variable.Latest(ctx)
	if err != nil {
		return nil, fmt.Errorf("read secret variable: %w", err)
	}

	switch v := snapshot.Value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unexpected secret variable type %T", snapshot.Value)
	}
}

// Close releases the underlying variable's resources.
func (s *VariableSecretFetcher) Close() error {
	return s.variable.Close()
}
