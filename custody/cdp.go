package custody

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultCDPBaseURL = "https://api.cdp.coinbase.com/platform/v1"

// CDPClient provisions MPC wallets through the Coinbase Developer
// Platform custody API. The export blob is whatever the API hands back
// verbatim; this client never transforms it.
type CDPClient struct {
	baseURL    string
	apiKeyName string
	apiSecret  string
	client     *http.Client
}

// NewCDPClient creates a custody client authenticated with the given API
// key name and private key. An empty baseURL selects the production API.
func NewCDPClient(baseURL, apiKeyName, apiSecret string) *CDPClient {
	if baseURL == "" {
		baseURL = defaultCDPBaseURL
	}
	return &CDPClient{
		baseURL:    baseURL,
		apiKeyName: apiKeyName,
		apiSecret:  apiSecret,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type cdpWalletResponse struct {
	ID             string `json:"id"`
	NetworkID      string `json:"network_id"`
	DefaultAddress struct {
		AddressID string `json:"address_id"`
	} `json:"default_address"`
}

// CreateWallet asks the custody API for a new wallet on the network,
// then exports its secret material as the wallet's blob.
func (c *CDPClient) CreateWallet(ctx context.Context, networkID string) (*Wallet, error) {
	body, err := json.Marshal(map[string]string{"network_id": networkID})
	if err != nil {
		return nil, fmt.Errorf("could not marshal create request: %w", err)
	}

	var created cdpWalletResponse
	if err := c.do(ctx, http.MethodPost, "/wallets", body, &created); err != nil {
		return nil, fmt.Errorf("could not create wallet: %w", err)
	}

	blob, err := c.export(ctx, created.ID)
	if err != nil {
		return nil, fmt.Errorf("could not export wallet %s: %w", created.ID, err)
	}
	if len(blob) == 0 {
		return nil, fmt.Errorf("custody API returned an empty export for wallet %s", created.ID)
	}

	return NewWallet(networkID, created.DefaultAddress.AddressID, blob), nil
}

// RestoreWallet imports a previously exported blob and returns the
// rehydrated wallet handle. The blob passes through untouched.
func (c *CDPClient) RestoreWallet(ctx context.Context, networkID string, blob []byte) (*Wallet, error) {
	var imported cdpWalletResponse
	if err := c.do(ctx, http.MethodPost, "/wallets/import", blob, &imported); err != nil {
		return nil, fmt.Errorf("could not import wallet: %w", err)
	}
	if imported.NetworkID != "" && imported.NetworkID != networkID {
		return nil, fmt.Errorf("imported wallet is on network %q, not %q", imported.NetworkID, networkID)
	}

	return NewWallet(networkID, imported.DefaultAddress.AddressID, blob), nil
}

// export fetches the raw secret material for a wallet. The response body
// is the blob, byte for byte.
func (c *CDPClient) export(ctx context.Context, walletID string) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/wallets/"+walletID+"/export", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("custody API returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (c *CDPClient) do(ctx context.Context, method, path string, body []byte, out any) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("custody API returned status %d", resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("could not decode custody API response: %w", err)
	}
	return nil
}

func (c *CDPClient) newRequest(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key-Name", c.apiKeyName)
	req.Header.Set("Authorization", "Bearer "+c.apiSecret)
	return req, nil
}
