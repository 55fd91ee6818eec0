package codec

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strconv"
)

// Tx type routes.
const (
	TypeAuthRegisterAccount = "auth/register_account"
	TypeGameInit            = "game/init"
	TypeGameCommit          = "game/commit"
	TypeGameAdvance         = "game/advance"
	TypeGameReveal          = "game/reveal"
	TypeGameFinalise        = "game/finalise"
)

// TxAuthDomain prefixes every signed message.
const TxAuthDomain = "vaultwars/tx/v1"

// TxEnvelope is the transaction container.
//
// CometBFT transactions are opaque bytes; ours are JSON.
type TxEnvelope struct {
	// Basic routing.
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`

	// Authentication:
	// - Nonce: decimal u64, must strictly increase per signer.
	// - Signer: account the tx acts as.
	// - Sig: Ed25519 signature over SignBytes(type, value, nonce, signer).
	Nonce  string `json:"nonce,omitempty"`
	Signer string `json:"signer,omitempty"`
	Sig    []byte `json:"sig,omitempty"`
}

func DecodeTxEnvelope(txBytes []byte) (TxEnvelope, error) {
	var env TxEnvelope
	if err := json.Unmarshal(txBytes, &env); err != nil {
		return TxEnvelope{}, fmt.Errorf("invalid tx json: %w", err)
	}
	if env.Type == "" {
		return TxEnvelope{}, fmt.Errorf("missing tx.type")
	}
	return env, nil
}

// SignBytes = DOMAIN || 0x00 || type || 0x00 || nonce || 0x00 || signer || 0x00 || sha256(value)
func SignBytes(typ string, value []byte, nonce string, signer string) []byte {
	sum := sha256.Sum256(value)
	out := make([]byte, 0, len(TxAuthDomain)+1+len(typ)+1+len(nonce)+1+len(signer)+1+sha256.Size)
	out = append(out, []byte(TxAuthDomain)...)
	out = append(out, 0)
	out = append(out, []byte(typ)...)
	out = append(out, 0)
	out = append(out, []byte(nonce)...)
	out = append(out, 0)
	out = append(out, []byte(signer)...)
	out = append(out, 0)
	out = append(out, sum[:]...)
	return out
}

// EncodeTx builds unsigned tx bytes.
func EncodeTx(typ string, value any) ([]byte, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode tx value: %w", err)
	}
	return json.Marshal(TxEnvelope{Type: typ, Value: raw})
}

// EncodeSignedTx builds tx bytes signed by signer with priv.
func EncodeSignedTx(typ string, value any, nonce uint64, signer string, priv ed25519.PrivateKey) ([]byte, error) {
	if len(priv) != ed25519.PrivateKeySize {
		return nil, fmt.Errorf("private key must be %d bytes", ed25519.PrivateKeySize)
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("encode tx value: %w", err)
	}
	n := strconv.FormatUint(nonce, 10)
	env := TxEnvelope{
		Type:   typ,
		Value:  raw,
		Nonce:  n,
		Signer: signer,
		Sig:    ed25519.Sign(priv, SignBytes(typ, raw, n, signer)),
	}
	return json.Marshal(env)
}

// ---- Auth ----

// AuthRegisterAccountTx binds an account name to its ed25519 key.
type AuthRegisterAccountTx struct {
	Account string `json:"account"`
	PubKey  []byte `json:"pubKey"` // base64 (32 bytes)
}

// ---- Game ----

type GameInitTx struct {
	PlayerOne string `json:"playerOne"`
	PlayerTwo string `json:"playerTwo"`
}

type GameCommitTx struct {
	Player     string `json:"player"`
	Commitment []byte `json:"commitment"` // base64 (32 bytes)
}

// GameAdvanceTx moves the session from commit to reveal (relayer).
type GameAdvanceTx struct{}

type GameRevealTx struct {
	Player string `json:"player"`
	Action string `json:"action"` // attack|defend|vault
	Proof  []byte `json:"proof"`  // base64, opaque
}

// GameFinaliseTx delivers relayer-verified score deltas.
type GameFinaliseTx struct {
	DeltaOne int32 `json:"deltaOne"`
	DeltaTwo int32 `json:"deltaTwo"`
}
