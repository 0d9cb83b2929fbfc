package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"aimon-cli/custody"
)

// stubProvisioner counts branch usage and serves a fixed blob.
type stubProvisioner struct {
	createCalls  int
	restoreCalls int
	blob         []byte
	createErr    error
	restoreErr   error
}

func (p *stubProvisioner) CreateWallet(_ context.Context, networkID string) (*custody.Wallet, error) {
	p.createCalls++
	if p.createErr != nil {
		return nil, p.createErr
	}
	return custody.NewWallet(networkID, "addr-created", p.blob), nil
}

func (p *stubProvisioner) RestoreWallet(_ context.Context, networkID string, blob []byte) (*custody.Wallet, error) {
	p.restoreCalls++
	if p.restoreErr != nil {
		return nil, p.restoreErr
	}
	return custody.NewWallet(networkID, "addr-restored", blob), nil
}

func TestLoadOrCreateNewSlot(t *testing.T) {
	key := filepath.Join(t.TempDir(), "wallet_data.txt")
	p := &stubProvisioner{blob: []byte("B1")}
	store := NewCredentialStore(p, "base-sepolia")

	record, wallet, err := store.LoadOrCreate(context.Background(), key)
	if err != nil {
		t.Fatalf("expected success, got error: %v", err)
	}
	if record.Outcome != Created {
		t.Fatalf("expected Created outcome, got %s", record.Outcome)
	}
	if p.createCalls != 1 || p.restoreCalls != 0 {
		t.Fatalf("expected exactly one create and no restore, got %d/%d", p.createCalls, p.restoreCalls)
	}
	if wallet.Address() != "addr-created" {
		t.Fatalf("unexpected wallet address %q", wallet.Address())
	}

	onDisk, err := os.ReadFile(key)
	if err != nil {
		t.Fatalf("expected file at storage key: %v", err)
	}
	if len(onDisk) == 0 {
		t.Fatal("persisted blob is empty")
	}
	if !bytes.Equal(onDisk, record.ExportBlob) {
		t.Fatalf("on-disk blob %q does not match record blob %q", onDisk, record.ExportBlob)
	}
}

func TestLoadOrCreateExistingSlot(t *testing.T) {
	key := filepath.Join(t.TempDir(), "wallet_data.txt")
	first := &stubProvisioner{blob: []byte("B1")}
	if _, _, err := NewCredentialStore(first, "base-sepolia").LoadOrCreate(context.Background(), key); err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	// Second process run against the same key.
	second := &stubProvisioner{blob: []byte("B2")}
	record, wallet, err := NewCredentialStore(second, "base-sepolia").LoadOrCreate(context.Background(), key)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if record.Outcome != Restored {
		t.Fatalf("expected Restored outcome, got %s", record.Outcome)
	}
	if second.createCalls != 0 {
		t.Fatalf("restore run must not create, got %d create calls", second.createCalls)
	}
	if !bytes.Equal(record.ExportBlob, []byte("B1")) {
		t.Fatalf("expected blob B1 back, got %q", record.ExportBlob)
	}
	if wallet.Address() != "addr-restored" {
		t.Fatalf("unexpected wallet address %q", wallet.Address())
	}
}

func TestPersistThenLoadRoundTrip(t *testing.T) {
	key := filepath.Join(t.TempDir(), "wallet_data.txt")
	p := &stubProvisioner{blob: []byte("ignored")}
	store := NewCredentialStore(p, "base-sepolia")

	record := &WalletRecord{
		NetworkID:  "base-sepolia",
		StorageKey: key,
		ExportBlob: []byte("persisted-blob"),
	}
	if err := store.Persist(record); err != nil {
		t.Fatalf("persist failed: %v", err)
	}

	loaded, _, err := store.LoadOrCreate(context.Background(), key)
	if err != nil {
		t.Fatalf("load after persist failed: %v", err)
	}
	if loaded.Outcome != Restored {
		t.Fatalf("expected Restored, got %s", loaded.Outcome)
	}
	if !bytes.Equal(loaded.ExportBlob, record.ExportBlob) {
		t.Fatalf("round trip mismatch: wrote %q, read %q", record.ExportBlob, loaded.ExportBlob)
	}
}

func TestLoadOrCreateEmptyFileIsCorruption(t *testing.T) {
	key := filepath.Join(t.TempDir(), "wallet_data.txt")
	if err := os.WriteFile(key, nil, 0600); err != nil {
		t.Fatal(err)
	}

	p := &stubProvisioner{blob: []byte("B1")}
	_, _, err := NewCredentialStore(p, "base-sepolia").LoadOrCreate(context.Background(), key)
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
	if p.createCalls != 0 || p.restoreCalls != 0 {
		t.Fatal("corrupted slot must not reach the provisioner")
	}
}

func TestLoadOrCreateIndependentKeys(t *testing.T) {
	dir := t.TempDir()
	keyA := filepath.Join(dir, "wallet_data.txt")
	keyB := filepath.Join(dir, "wallet_data_2.txt")

	storeA := NewCredentialStore(&stubProvisioner{blob: []byte("blob-A")}, "base-sepolia")
	storeB := NewCredentialStore(&stubProvisioner{blob: []byte("blob-B")}, "base-sepolia")

	recordA, _, err := storeA.LoadOrCreate(context.Background(), keyA)
	if err != nil {
		t.Fatal(err)
	}
	recordB, _, err := storeB.LoadOrCreate(context.Background(), keyB)
	if err != nil {
		t.Fatal(err)
	}

	if bytes.Equal(recordA.ExportBlob, recordB.ExportBlob) {
		t.Fatal("distinct keys produced identical blobs")
	}

	// Re-reading A must still return A's blob untouched by B's creation.
	again, _, err := storeA.LoadOrCreate(context.Background(), keyA)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(again.ExportBlob, []byte("blob-A")) {
		t.Fatalf("slot A was disturbed: got %q", again.ExportBlob)
	}
}

func TestLoadOrCreateProvisioningFailure(t *testing.T) {
	key := filepath.Join(t.TempDir(), "wallet_data.txt")
	p := &stubProvisioner{createErr: fmt.Errorf("custody API returned status 401")}

	_, _, err := NewCredentialStore(p, "base-sepolia").LoadOrCreate(context.Background(), key)
	if !errors.Is(err, ErrProvisioningFailed) {
		t.Fatalf("expected ErrProvisioningFailed, got %v", err)
	}
	if _, statErr := os.Stat(key); !os.IsNotExist(statErr) {
		t.Fatal("failed provisioning must not leave a file behind")
	}
}

func TestPersistUnwritableKey(t *testing.T) {
	// A directory at the storage key makes the slot unwritable.
	dir := t.TempDir()
	store := NewCredentialStore(&stubProvisioner{}, "base-sepolia")

	err := store.Persist(&WalletRecord{StorageKey: dir, ExportBlob: []byte("B1")})
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}

func TestLoadOrCreateDirectoryKey(t *testing.T) {
	dir := t.TempDir()
	_, _, err := NewCredentialStore(&stubProvisioner{}, "base-sepolia").LoadOrCreate(context.Background(), dir)
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}

func TestDefaultStorageKey(t *testing.T) {
	cases := []struct {
		name    string
		network string
		suffix  int
		want    string
	}{
		{"DefaultNetwork", DefaultNetworkID, 0, "wallet_data.txt"},
		{"DefaultNetworkFirst", DefaultNetworkID, 1, "wallet_data.txt"},
		{"DefaultNetworkSecond", DefaultNetworkID, 2, "wallet_data_2.txt"},
		{"OtherNetwork", "base-mainnet", 1, "wallet_data_base-mainnet.txt"},
		{"OtherNetworkThird", "base-mainnet", 3, "wallet_data_base-mainnet_3.txt"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DefaultStorageKey(tc.network, tc.suffix); got != tc.want {
				t.Fatalf("DefaultStorageKey(%q, %d) = %q, want %q", tc.network, tc.suffix, got, tc.want)
			}
		})
	}
}
