package storage

import (
	"context"
	"errors"
	"fmt"
	"os"

	"aimon-cli/custody"
)

const (
	// DefaultNetworkID is the network context wallets are provisioned on
	// unless configured otherwise.
	DefaultNetworkID = "base-sepolia"

	defaultFileBase = "wallet_data"
)

var (
	// ErrStorageUnavailable means the credential file could not be read or
	// written. It is never retried: proceeding anyway risks provisioning a
	// duplicate wallet over a slot that already holds one.
	ErrStorageUnavailable = errors.New("wallet storage unavailable")

	// ErrProvisioningFailed means the custody provisioner could not create
	// or restore a wallet (bad credentials, network failure upstream).
	ErrProvisioningFailed = errors.New("wallet provisioning failed")
)

// CredentialStore owns the on-disk representation of one wallet's export
// blob per storage key, for one network context. It decides, once per
// process, whether to provision a new wallet or resume an existing one.
//
// Known limitations, carried over from the original single-file scheme:
// the previous blob is not backed up on overwrite, and two processes
// pointed at the same storage key race with last-writer-wins semantics.
type CredentialStore struct {
	provisioner custody.Provisioner
	networkID   string
}

// NewCredentialStore binds a store to one custody provisioner and one
// network identifier.
func NewCredentialStore(p custody.Provisioner, networkID string) *CredentialStore {
	return &CredentialStore{provisioner: p, networkID: networkID}
}

// DefaultStorageKey derives the slot name for a wallet on the given
// network. The default network with suffix <= 1 keeps the historical
// wallet_data.txt name; a higher suffix names an additional wallet on
// the same network (wallet_data_2.txt and so on).
func DefaultStorageKey(networkID string, suffix int) string {
	name := defaultFileBase
	if networkID != "" && networkID != DefaultNetworkID {
		name += "_" + networkID
	}
	if suffix > 1 {
		name += fmt.Sprintf("_%d", suffix)
	}
	return name + ".txt"
}

// LoadOrCreate resolves the storage key to a wallet record. If no record
// exists at the key it provisions a new wallet and persists its export
// blob before returning; otherwise it reads the blob back and restores
// the wallet from it. Exactly one of the two branches runs.
func (s *CredentialStore) LoadOrCreate(ctx context.Context, storageKey string) (*WalletRecord, *custody.Wallet, error) {
	if storageKey == "" {
		return nil, nil, fmt.Errorf("%w: empty storage key", ErrStorageUnavailable)
	}

	info, err := os.Stat(storageKey)
	switch {
	case err != nil && os.IsNotExist(err):
		return s.create(ctx, storageKey)
	case err != nil:
		return nil, nil, fmt.Errorf("%w: could not stat %s: %v", ErrStorageUnavailable, storageKey, err)
	case info.IsDir():
		return nil, nil, fmt.Errorf("%w: %s is a directory", ErrStorageUnavailable, storageKey)
	case info.Size() == 0:
		// An empty slot is corruption, not absence. Re-creating here would
		// silently orphan whatever wallet the slot used to hold.
		return nil, nil, fmt.Errorf("%w: %s exists but is empty", ErrStorageUnavailable, storageKey)
	default:
		return s.restore(ctx, storageKey)
	}
}

func (s *CredentialStore) create(ctx context.Context, storageKey string) (*WalletRecord, *custody.Wallet, error) {
	wallet, err := s.provisioner.CreateWallet(ctx, s.networkID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrProvisioningFailed, err)
	}

	record := &WalletRecord{
		NetworkID:  s.networkID,
		StorageKey: storageKey,
		ExportBlob: wallet.ExportBlob(),
		Outcome:    Created,
	}
	if err := s.Persist(record); err != nil {
		return nil, nil, err
	}
	return record, wallet, nil
}

func (s *CredentialStore) restore(ctx context.Context, storageKey string) (*WalletRecord, *custody.Wallet, error) {
	blob, err := os.ReadFile(storageKey)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: could not read %s: %v", ErrStorageUnavailable, storageKey, err)
	}

	wallet, err := s.provisioner.RestoreWallet(ctx, s.networkID, blob)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrProvisioningFailed, err)
	}

	record := &WalletRecord{
		NetworkID:  s.networkID,
		StorageKey: storageKey,
		ExportBlob: blob,
		Outcome:    Restored,
	}
	return record, wallet, nil
}

// Persist writes the record's export blob to its storage key, replacing
// any prior contents. The previous blob is not kept. The file handle is
// released on every exit path, and a failed or partial write surfaces as
// ErrStorageUnavailable rather than leaving a silently truncated file.
func (s *CredentialStore) Persist(record *WalletRecord) (err error) {
	if record.StorageKey == "" {
		return fmt.Errorf("%w: record has no storage key", ErrStorageUnavailable)
	}

	f, err := os.OpenFile(record.StorageKey, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("%w: could not open %s: %v", ErrStorageUnavailable, record.StorageKey, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: could not close %s: %v", ErrStorageUnavailable, record.StorageKey, cerr)
		}
	}()

	if _, werr := f.Write(record.ExportBlob); werr != nil {
		return fmt.Errorf("%w: could not write %s: %v", ErrStorageUnavailable, record.StorageKey, werr)
	}
	if serr := f.Sync(); serr != nil {
		return fmt.Errorf("%w: could not sync %s: %v", ErrStorageUnavailable, record.StorageKey, serr)
	}
	return nil
}
