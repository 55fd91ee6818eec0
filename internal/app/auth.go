package app

import (
	"crypto/ed25519"
	"encoding/binary"
	"strconv"

	"github.com/leocagli/Human-vs-bots/internal/codec"
	"github.com/leocagli/Human-vs-bots/internal/game"
	"github.com/leocagli/Human-vs-bots/internal/store"
)

// signerAuth authenticates exactly the address that signed the tx.
type signerAuth struct {
	signer string
}

func (a signerAuth) RequireAuth(addr game.Address) error {
	if a.signer == "" {
		return game.ErrUnauthorized.Wrapf("unsigned tx cannot act as %q", addr)
	}
	if string(addr) != a.signer {
		return game.ErrUnauthorized.Wrapf("tx signer mismatch: signer=%q want=%q", a.signer, addr)
	}
	return nil
}

func isSigned(env codec.TxEnvelope) bool {
	return env.Signer != "" || env.Nonce != "" || len(env.Sig) != 0
}

func requireSignedEnvelope(env codec.TxEnvelope) error {
	if env.Nonce == "" {
		return game.ErrUnauthorized.Wrap("missing tx.nonce")
	}
	if env.Signer == "" {
		return game.ErrUnauthorized.Wrap("missing tx.signer")
	}
	if len(env.Sig) == 0 {
		return game.ErrUnauthorized.Wrap("missing tx.sig")
	}
	if len(env.Sig) != ed25519.SignatureSize {
		return game.ErrUnauthorized.Wrapf("invalid tx.sig length: got %d want %d", len(env.Sig), ed25519.SignatureSize)
	}
	return nil
}

func requireRegisterAccountAuth(env codec.TxEnvelope, msg codec.AuthRegisterAccountTx) error {
	if msg.Account == "" {
		return game.ErrInvalidRequest.Wrap("missing account")
	}
	if len(msg.PubKey) != ed25519.PublicKeySize {
		return game.ErrInvalidRequest.Wrapf("pubKey must be %d bytes", ed25519.PublicKeySize)
	}
	if err := requireSignedEnvelope(env); err != nil {
		return err
	}
	if env.Signer != msg.Account {
		return game.ErrUnauthorized.Wrapf("tx signer mismatch: signer=%q want=%q", env.Signer, msg.Account)
	}
	msgBytes := codec.SignBytes(env.Type, env.Value, env.Nonce, env.Signer)
	if !ed25519.Verify(ed25519.PublicKey(msg.PubKey), msgBytes, env.Sig) {
		return game.ErrUnauthorized.Wrap("invalid signature")
	}
	return nil
}

func requireAccountAuth(kv store.KVStore, env codec.TxEnvelope) error {
	if err := requireSignedEnvelope(env); err != nil {
		return err
	}
	pub, err := kv.Get(AccountKey(env.Signer))
	if err != nil {
		return err
	}
	if len(pub) != ed25519.PublicKeySize {
		return game.ErrUnauthorized.Wrapf("account %q missing pubKey (auth/register_account required)", env.Signer)
	}
	msg := codec.SignBytes(env.Type, env.Value, env.Nonce, env.Signer)
	if !ed25519.Verify(ed25519.PublicKey(pub), msg, env.Sig) {
		return game.ErrUnauthorized.Wrap("invalid signature")
	}
	return nil
}

// consumeNonce enforces strictly increasing nonces per signer.
func consumeNonce(kv store.KVStore, env codec.TxEnvelope) error {
	n, err := strconv.ParseUint(env.Nonce, 10, 64)
	if err != nil {
		return game.ErrUnauthorized.Wrapf("invalid tx.nonce %q", env.Nonce)
	}
	last, err := kv.Get(NonceKey(env.Signer))
	if err != nil {
		return err
	}
	if len(last) == 8 && n <= binary.BigEndian.Uint64(last) {
		return game.ErrUnauthorized.Wrapf("nonce replay: got %d, last accepted %d", n, binary.BigEndian.Uint64(last))
	}
	return kv.Set(NonceKey(env.Signer), u64be(n))
}
