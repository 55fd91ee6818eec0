package app

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"strings"

	errorsmod "cosmossdk.io/errors"
	abci "github.com/cometbft/cometbft/abci/types"

	"github.com/leocagli/Human-vs-bots/internal/game"
)

// readOnly rejects every authentication request; queries never mutate state.
var readOnly = game.AuthFunc(func(addr game.Address) error {
	return game.ErrUnauthorized.Wrapf("queries cannot act as %q", addr)
})

func (a *VaultApp) Query(_ context.Context, req *abci.QueryRequest) (*abci.QueryResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Paths:
	// - /state
	// - /commit/<1|2>
	// - /account/<addr>
	k := game.NewKeeper(a.base, readOnly, a.root)
	path := strings.TrimSpace(req.Path)
	switch {
	case path == "/state":
		st, err := k.GetState()
		if err != nil {
			return a.queryErr(err), nil
		}
		return a.queryJSON(st), nil

	case strings.HasPrefix(path, "/commit/"):
		var slot game.Slot
		switch strings.TrimPrefix(path, "/commit/") {
		case "1":
			slot = game.SlotOne
		case "2":
			slot = game.SlotTwo
		default:
			return a.queryErr(game.ErrInvalidRequest.Wrap("invalid slot")), nil
		}
		c, err := k.GetCommit(slot)
		if err != nil {
			return a.queryErr(err), nil
		}
		return a.queryJSON(c), nil

	case strings.HasPrefix(path, "/account/"):
		addr := strings.TrimPrefix(path, "/account/")
		pub, err := a.base.Get(AccountKey(addr))
		if err != nil {
			return a.queryErr(err), nil
		}
		if pub == nil {
			return a.queryErr(game.ErrNotFound.Wrapf("account %q not registered", addr)), nil
		}
		var nonce uint64
		nb, err := a.base.Get(NonceKey(addr))
		if err != nil {
			return a.queryErr(err), nil
		}
		if len(nb) == 8 {
			nonce = binary.BigEndian.Uint64(nb)
		}
		return a.queryJSON(map[string]any{"addr": addr, "pubKey": pub, "nonce": nonce}), nil

	default:
		return a.queryErr(game.ErrInvalidRequest.Wrap("unknown query path")), nil
	}
}

func (a *VaultApp) queryJSON(v any) *abci.QueryResponse {
	b, err := json.Marshal(v)
	if err != nil {
		return a.queryErr(err)
	}
	return &abci.QueryResponse{Code: 0, Value: b, Height: a.height}
}

func (a *VaultApp) queryErr(err error) *abci.QueryResponse {
	codespace, code, logMsg := errorsmod.ABCIInfo(err, false)
	return &abci.QueryResponse{Code: code, Codespace: codespace, Log: logMsg, Height: a.height}
}
