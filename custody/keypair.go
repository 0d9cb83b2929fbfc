package custody

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// keypairBlob is the on-disk shape of a locally generated wallet.
type keypairBlob struct {
	NetworkID  string `json:"network_id"`
	PrivateKey string `json:"private_key"` // base64 encoded
}

// KeypairProvisioner is a local, offline custody provisioner backed by a
// freshly generated Solana keypair. It is the fallback when no custody
// API credentials are configured; it never talks to an RPC node.
type KeypairProvisioner struct{}

// NewKeypairProvisioner returns a local keypair provisioner.
func NewKeypairProvisioner() *KeypairProvisioner {
	return &KeypairProvisioner{}
}

// CreateWallet generates a new keypair and serializes it into an export
// blob.
func (p *KeypairProvisioner) CreateWallet(_ context.Context, networkID string) (*Wallet, error) {
	key := solana.NewWallet().PrivateKey

	blob, err := json.Marshal(keypairBlob{
		NetworkID:  networkID,
		PrivateKey: base64.StdEncoding.EncodeToString(key[:]),
	})
	if err != nil {
		return nil, fmt.Errorf("could not marshal wallet data: %w", err)
	}

	return NewWallet(networkID, key.PublicKey().String(), blob), nil
}

// RestoreWallet rebuilds a wallet handle from a blob previously produced
// by CreateWallet.
func (p *KeypairProvisioner) RestoreWallet(_ context.Context, networkID string, blob []byte) (*Wallet, error) {
	var data keypairBlob
	if err := json.Unmarshal(blob, &data); err != nil {
		return nil, fmt.Errorf("could not parse wallet data: %w", err)
	}

	keyBytes, err := base64.StdEncoding.DecodeString(data.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("could not decode private key: %w", err)
	}
	if len(keyBytes) != solana.PrivateKeyLength {
		return nil, fmt.Errorf("invalid private key length: expected %d, got %d", solana.PrivateKeyLength, len(keyBytes))
	}
	if data.NetworkID != "" && data.NetworkID != networkID {
		return nil, fmt.Errorf("wallet data is for network %q, not %q", data.NetworkID, networkID)
	}

	key := solana.PrivateKey(keyBytes)
	return NewWallet(networkID, key.PublicKey().String(), blob), nil
}
