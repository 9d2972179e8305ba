package main

import (
	"fmt"
	"log"

	"github.com/hyunwoooim-star/ai-market-sub000/crypto"
)

func main() {
	pub, priv, err := crypto.GenerateKeyPair()
	if err != nil {
		log.Fatalf("Failed to generate key pair: %v", err)
	}

	address, err := crypto.Address(pub)
	if err != nil {
		log.Fatalf("Failed to derive address: %v", err)
	}

	fmt.Println("Ledger address:", address)
	fmt.Println("Public Key:", pub)
	fmt.Println("Private Key (set as LEDGER_SIGNING_KEY):", priv)
}
