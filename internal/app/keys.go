package app

import "encoding/binary"

// App-level keys live above the game module's 0x01/0x02 prefixes.
var (
	// AccountKeyPrefix stores an account's ed25519 public key: AccountKeyPrefix || addr.
	AccountKeyPrefix = []byte{0x10}

	// NonceKeyPrefix stores the last accepted nonce of a signer as u64be: NonceKeyPrefix || signer.
	NonceKeyPrefix = []byte{0x11}

	// HeightKey stores the last finalized height as u64be.
	HeightKey = []byte{0x20}

	// AppHashKey stores the last app hash.
	AppHashKey = []byte{0x21}
)

func AccountKey(addr string) []byte {
	return append(append([]byte{}, AccountKeyPrefix...), addr...)
}

func NonceKey(signer string) []byte {
	return append(append([]byte{}, NonceKeyPrefix...), signer...)
}

func u64be(x uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, x)
	return b
}
