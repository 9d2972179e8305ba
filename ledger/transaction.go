package ledger

import (
	"bytes"
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"
)

// memoProgramID is the on-chain program that records arbitrary memo bytes.
const memoProgramID = "MemoSq4gqABAXKb96qnH8TysNcWxMyWCqXgDLGmfcHr"

// buildMemoTransaction serializes and signs a minimal single-instruction
// transaction: one signer, one program, the memo as instruction data.
func buildMemoTransaction(signingKey ed25519.PrivateKey, blockhash, memo string) ([]byte, error) {
	signer := signingKey.Public().(ed25519.PublicKey)

	program, err := base58.Decode(memoProgramID)
	if err != nil {
		return nil, fmt.Errorf("invalid memo program id: %v", err)
	}

	hash, err := base58.Decode(blockhash)
	if err != nil {
		return nil, fmt.Errorf("invalid blockhash: %v", err)
	}
	if len(hash) != 32 {
		return nil, fmt.Errorf("invalid blockhash length: got %d bytes, expected 32", len(hash))
	}

	var msg bytes.Buffer
	// Header: 1 required signature, 0 readonly signed, 1 readonly unsigned.
	msg.Write([]byte{1, 0, 1})
	writeCompactLen(&msg, 2)
	msg.Write(signer)
	msg.Write(program)
	msg.Write(hash)
	writeCompactLen(&msg, 1)
	msg.WriteByte(1) // program id index
	writeCompactLen(&msg, 0)
	writeCompactLen(&msg, len(memo))
	msg.WriteString(memo)

	signature := ed25519.Sign(signingKey, msg.Bytes())

	var tx bytes.Buffer
	writeCompactLen(&tx, 1)
	tx.Write(signature)
	tx.Write(msg.Bytes())
	return tx.Bytes(), nil
}

// writeCompactLen encodes a length in the ledger's compact-u16 format.
func writeCompactLen(buf *bytes.Buffer, n int) {
	for {
		b := byte(n & 0x7f)
		n >>= 7
		if n == 0 {
			buf.WriteByte(b)
			return
		}
		buf.WriteByte(b | 0x80)
	}
}
