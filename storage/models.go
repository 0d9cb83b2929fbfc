package storage

// Outcome records which branch of the load-or-create decision was taken
// for a storage slot. Exactly one of the two occurs per LoadOrCreate call.
type Outcome int

const (
	// Created means no record existed at the storage key and a new
	// wallet was provisioned and persisted.
	Created Outcome = iota
	// Restored means an existing record was read back and the wallet
	// was rebuilt from its export blob.
	Restored
)

func (o Outcome) String() string {
	switch o {
	case Created:
		return "created"
	case Restored:
		return "restored"
	default:
		return "unknown"
	}
}

// WalletRecord represents one wallet's persisted state for one network.
// The export blob is owned by the custody provisioner; this package
// round-trips it byte-for-byte and never inspects it.
type WalletRecord struct {
	NetworkID  string
	StorageKey string
	ExportBlob []byte
	Outcome    Outcome
}
