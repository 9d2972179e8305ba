package ledger

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mr-tron/base58"
)

const (
	// MinSubmitBalance is the lamport floor under which the signing account
	// is assumed unable to pay a memo submission fee.
	MinSubmitBalance = 10_000

	// topUpAmount is the lamports requested from the faucet in one remedial
	// top-up.
	topUpAmount = 1_000_000_000

	requestTimeout = 20 * time.Second
)

// Client talks JSON-RPC to an account-based distributed ledger and submits
// memo-bearing transactions signed with a locally held Ed25519 key.
type Client struct {
	rpcURL     string
	httpClient *http.Client
	signingKey ed25519.PrivateKey
	address    string
}

// NewClient builds a ledger client from a hex-encoded Ed25519 private key
// (either a 32-byte seed or a full 64-byte key).
func NewClient(rpcURL, signingKeyHex string) (*Client, error) {
	raw, err := hex.DecodeString(strings.TrimSpace(signingKeyHex))
	if err != nil {
		return nil, fmt.Errorf("invalid signing key: hex decoding failed: %w", err)
	}

	var key ed25519.PrivateKey
	switch len(raw) {
	case ed25519.SeedSize:
		key = ed25519.NewKeyFromSeed(raw)
	case ed25519.PrivateKeySize:
		key = ed25519.PrivateKey(raw)
	default:
		return nil, fmt.Errorf("invalid signing key length: got %d bytes, expected %d or %d",
			len(raw), ed25519.SeedSize, ed25519.PrivateKeySize)
	}

	return &Client{
		rpcURL:     rpcURL,
		httpClient: &http.Client{Timeout: requestTimeout},
		signingKey: key,
		address:    base58.Encode(key.Public().(ed25519.PublicKey)),
	}, nil
}

// Address returns the base58 address of the signing account.
func (c *Client) Address() string {
	return c.address
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      int           `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("ledger rpc error %d: %s", e.Code, e.Message)
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

func (c *Client) call(ctx context.Context, method string, params []interface{}, result interface{}) error {
	body, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("failed to marshal rpc request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.rpcURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create rpc request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ledger unreachable: %w", err)
	}
	defer resp.Body.Close()

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return fmt.Errorf("failed to decode rpc response: %v", err)
	}
	if rpcResp.Error != nil {
		return rpcResp.Error
	}
	if result != nil {
		if err := json.Unmarshal(rpcResp.Result, result); err != nil {
			return fmt.Errorf("failed to decode %s result: %v", method, err)
		}
	}
	return nil
}

// Balance returns the signing account's balance in lamports.
func (c *Client) Balance(ctx context.Context) (uint64, error) {
	var result struct {
		Value uint64 `json:"value"`
	}
	if err := c.call(ctx, "getBalance", []interface{}{c.address}, &result); err != nil {
		return 0, err
	}
	return result.Value, nil
}

// RequestTopUp asks the network faucet to fund the signing account. Only
// meaningful on test networks; mainnet deployments keep the account funded.
func (c *Client) RequestTopUp(ctx context.Context) error {
	var signature string
	return c.call(ctx, "requestAirdrop", []interface{}{c.address, topUpAmount}, &signature)
}

// latestBlockhash fetches the recent blockhash every transaction must
// reference.
func (c *Client) latestBlockhash(ctx context.Context) (string, error) {
	var result struct {
		Value struct {
			Blockhash string `json:"blockhash"`
		} `json:"value"`
	}
	if err := c.call(ctx, "getLatestBlockhash", []interface{}{}, &result); err != nil {
		return "", err
	}
	return result.Value.Blockhash, nil
}

// SubmitMemo commits a memo string to the ledger and returns the transaction
// signature as the ledger reference.
func (c *Client) SubmitMemo(ctx context.Context, memo string) (string, error) {
	blockhash, err := c.latestBlockhash(ctx)
	if err != nil {
		return "", err
	}

	tx, err := buildMemoTransaction(c.signingKey, blockhash, memo)
	if err != nil {
		return "", err
	}

	var signature string
	err = c.call(ctx, "sendTransaction", []interface{}{
		base64.StdEncoding.EncodeToString(tx),
		map[string]interface{}{"encoding": "base64"},
	}, &signature)
	if err != nil {
		return "", err
	}
	return signature, nil
}

// ExplorerURL derives a human-readable explorer link for a ledger reference.
func (c *Client) ExplorerURL(ref string) string {
	return fmt.Sprintf("https://explorer.solana.com/tx/%s?cluster=devnet", ref)
}

// IsInsufficientFunds reports whether an error came back because the signing
// account could not cover the submission fee.
func IsInsufficientFunds(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "insufficient")
}
