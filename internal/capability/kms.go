package capability

import (
	"context"
	"fmt"

	"gocloud.dev/secrets"

	// Register every KMS provider driver, so the key URI alone selects
	// the provider.
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// KMSUnwrapper implements KeyUnwrapper against gocloud.dev/secrets.
type KMSUnwrapper struct {
	keeper *secrets.Keeper
}

// NewKMSUnwrapper opens a secrets.Keeper for keyURI (e.g.
// "awskms://alias/my-key?region=us-east-1") and returns a KeyUnwrapper
// backed by it.
func NewKMSUnwrapper(ctx context.Context, keyURI string) (*KMSUnwrapper, error) {
	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("open kms keeper: %w", err)
	}
	return &KMSUnwrapper{keeper: keeper}, nil
}

func (k *KMSUnwrapper) Unwrap(ctx context.Context, wrapped []byte) ([]byte, error) {
	plaintext, err := k.keeper.Decrypt(ctx, wrapped)
	if err != nil {
		return nil, fmt.Errorf("kms decrypt: %w", err)
	}
	return plaintext, nil
}

// Close releases the underlying keeper's resources.
func (k *KMSUnwrapper) Close() error {
	return k.keeper.Close()
}
