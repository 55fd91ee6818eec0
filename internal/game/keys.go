package game

import "fmt"

const (
	// ModuleName defines the module name. It doubles as the error codespace.
	ModuleName = "vaultwars"

	// MaxTurns is the number of turns a session runs before it finishes.
	MaxTurns uint32 = 10
)

var (
	// GameStateKey stores the single session record.
	GameStateKey = []byte{0x01}

	// CommitKeyPrefix stores VaultCommit by slot: CommitKeyPrefix || slot.
	CommitKeyPrefix = []byte{0x02}
)

func CommitKey(slot Slot) []byte {
	return []byte{CommitKeyPrefix[0], byte(slot)}
}

// Slot identifies a participant: SlotOne is player one, SlotTwo is player two.
type Slot uint8

const (
	SlotOne Slot = 1
	SlotTwo Slot = 2
)

func (s Slot) Valid() bool { return s == SlotOne || s == SlotTwo }

func (s Slot) index() int { return int(s) - 1 }

// Other returns the opposing slot.
func (s Slot) Other() Slot {
	if s == SlotOne {
		return SlotTwo
	}
	return SlotOne
}

func (s Slot) String() string { return fmt.Sprintf("%d", uint8(s)) }
