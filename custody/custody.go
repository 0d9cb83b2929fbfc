// Package custody abstracts the external wallet-custody collaborator:
// the service or library that generates and restores blockchain wallet
// key material. The export blob format belongs to each provisioner;
// callers round-trip it without inspecting it.
package custody

import "context"

// Provisioner creates new wallets and restores existing ones from their
// export blobs.
type Provisioner interface {
	CreateWallet(ctx context.Context, networkID string) (*Wallet, error)
	RestoreWallet(ctx context.Context, networkID string, blob []byte) (*Wallet, error)
}

// Wallet is an in-memory handle to one provisioned wallet.
type Wallet struct {
	networkID string
	address   string
	blob      []byte
}

// NewWallet builds a wallet handle. The blob is the provisioner's own
// serialization of the wallet's secret state.
func NewWallet(networkID, address string, blob []byte) *Wallet {
	return &Wallet{networkID: networkID, address: address, blob: blob}
}

// NetworkID returns the network this wallet was provisioned for.
func (w *Wallet) NetworkID() string { return w.networkID }

// Address returns the wallet's public address.
func (w *Wallet) Address() string { return w.address }

// ExportBlob returns the serialized secret state suitable for
// persistence and later restore.
func (w *Wallet) ExportBlob() []byte { return w.blob }
