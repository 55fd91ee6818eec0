package app

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sync"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/log"
	abci "github.com/cometbft/cometbft/abci/types"
	dbm "github.com/cosmos/cosmos-db"

	"github.com/leocagli/Human-vs-bots/internal/codec"
	"github.com/leocagli/Human-vs-bots/internal/game"
	"github.com/leocagli/Human-vs-bots/internal/store"
)

const (
	AppVersion uint64 = 1
)

// Options tunes how the app drives the game keeper.
type Options struct {
	// Relayer, when set, is the only signer allowed to advance phases and finalise turns.
	Relayer     string
	ProofPolicy game.ProofPolicy
}

type VaultApp struct {
	*abci.BaseApplication

	root   log.Logger
	logger log.Logger
	opts   Options

	mu       sync.Mutex
	base     *store.DBStore
	pending  *store.CacheStore // writes of the block being finalized
	height   int64
	lastHash []byte
}

func New(db dbm.DB, logger log.Logger, opts Options) (*VaultApp, error) {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	if opts.ProofPolicy == "" {
		opts.ProofPolicy = game.ProofPolicyClear
	}
	base := store.NewDBStore(db)

	a := &VaultApp{
		BaseApplication: abci.NewBaseApplication(),
		root:            logger,
		logger:          logger.With("module", "abci"),
		opts:            opts,
		base:            base,
	}

	hb, err := base.Get(HeightKey)
	if err != nil {
		return nil, fmt.Errorf("read height: %w", err)
	}
	if len(hb) == 8 {
		a.height = int64(binary.BigEndian.Uint64(hb))
	}
	a.lastHash, err = base.Get(AppHashKey)
	if err != nil {
		return nil, fmt.Errorf("read app hash: %w", err)
	}
	return a, nil
}

func (a *VaultApp) Info(_ context.Context, _ *abci.InfoRequest) (*abci.InfoResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	return &abci.InfoResponse{
		Data:             "Vault Wars (v1)",
		Version:          "v1",
		AppVersion:       AppVersion,
		LastBlockHeight:  a.height,
		LastBlockAppHash: a.lastHash,
	}, nil
}

func (a *VaultApp) CheckTx(_ context.Context, req *abci.CheckTxRequest) (*abci.CheckTxResponse, error) {
	env, err := codec.DecodeTxEnvelope(req.Tx)
	if err != nil {
		return checkTxErr(game.ErrInvalidRequest.Wrap(err.Error())), nil
	}
	if !knownTxType(env.Type) {
		return checkTxErr(game.ErrInvalidRequest.Wrapf("unknown tx type: %s", env.Type)), nil
	}
	// Signatures and phase checks need state; they run in FinalizeBlock.
	return &abci.CheckTxResponse{Code: 0}, nil
}

func (a *VaultApp) InitChain(_ context.Context, _ *abci.InitChainRequest) (*abci.InitChainResponse, error) {
	return &abci.InitChainResponse{}, nil
}

func (a *VaultApp) FinalizeBlock(_ context.Context, req *abci.FinalizeBlockRequest) (*abci.FinalizeBlockResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.pending = store.NewCacheStore(a.base)

	txResults := make([]*abci.ExecTxResult, 0, len(req.Txs))
	for _, txBytes := range req.Txs {
		txResults = append(txResults, a.deliverTx(a.pending, txBytes))
	}

	if err := a.pending.Set(HeightKey, u64be(uint64(req.Height))); err != nil {
		return nil, err
	}
	hash := chainHash(a.lastHash, a.pending)
	if err := a.pending.Set(AppHashKey, hash); err != nil {
		return nil, err
	}
	a.height = req.Height
	a.lastHash = hash

	return &abci.FinalizeBlockResponse{
		TxResults: txResults,
		AppHash:   hash,
	}, nil
}

func (a *VaultApp) Commit(_ context.Context, _ *abci.CommitRequest) (*abci.CommitResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.pending == nil {
		return &abci.CommitResponse{}, nil
	}
	if err := a.pending.Write(); err != nil {
		// CometBFT expects Commit to not crash; return error so node halts loudly.
		return nil, err
	}
	a.pending = nil
	return &abci.CommitResponse{}, nil
}

// chainHash = sha256(prev || for each staged write in key order: u64be(len k) || k || u64be(len v) || v)
func chainHash(prev []byte, writes *store.CacheStore) []byte {
	h := sha256.New()
	h.Write(prev)
	writes.Range(func(k, v []byte) {
		h.Write(u64be(uint64(len(k))))
		h.Write(k)
		h.Write(u64be(uint64(len(v))))
		h.Write(v)
	})
	return h.Sum(nil)
}

func knownTxType(typ string) bool {
	switch typ {
	case codec.TypeAuthRegisterAccount,
		codec.TypeGameInit,
		codec.TypeGameCommit,
		codec.TypeGameAdvance,
		codec.TypeGameReveal,
		codec.TypeGameFinalise:
		return true
	default:
		return false
	}
}

// deliverTx executes one tx against a private cache over parent; the cache
// reaches parent only when the tx succeeds.
func (a *VaultApp) deliverTx(parent store.KVStore, txBytes []byte) *abci.ExecTxResult {
	env, err := codec.DecodeTxEnvelope(txBytes)
	if err != nil {
		return txErr(game.ErrInvalidRequest.Wrap(err.Error()))
	}

	cache := store.NewCacheStore(parent)
	events, err := a.route(cache, env)
	if err != nil {
		a.logger.Debug("tx rejected", "type", env.Type, "signer", env.Signer, "err", err)
		return txErr(err)
	}
	if err := cache.Write(); err != nil {
		return txErr(err)
	}
	return &abci.ExecTxResult{Code: 0, Events: toABCIEvents(events)}
}

func (a *VaultApp) route(kv *store.CacheStore, env codec.TxEnvelope) ([]game.Event, error) {
	if env.Type == codec.TypeAuthRegisterAccount {
		return registerAccount(kv, env)
	}
	if !knownTxType(env.Type) {
		return nil, game.ErrInvalidRequest.Wrapf("unknown tx type: %s", env.Type)
	}

	relayerOp := env.Type == codec.TypeGameAdvance || env.Type == codec.TypeGameFinalise
	if !relayerOp || isSigned(env) || a.opts.Relayer != "" {
		if err := requireAccountAuth(kv, env); err != nil {
			return nil, err
		}
		if err := consumeNonce(kv, env); err != nil {
			return nil, err
		}
	}
	if relayerOp && a.opts.Relayer != "" && env.Signer != a.opts.Relayer {
		return nil, game.ErrUnauthorized.Wrapf("%s is reserved for relayer %q", env.Type, a.opts.Relayer)
	}

	em := game.NewEventManager()
	k := game.NewKeeper(kv, signerAuth{signer: env.Signer}, a.root,
		game.WithProofPolicy(a.opts.ProofPolicy),
		game.WithEventManager(em),
	)

	var err error
	switch env.Type {
	case codec.TypeGameInit:
		var msg codec.GameInitTx
		if err := json.Unmarshal(env.Value, &msg); err != nil {
			return nil, game.ErrInvalidRequest.Wrap("bad game/init value")
		}
		err = k.InitGame(game.Address(msg.PlayerOne), game.Address(msg.PlayerTwo))

	case codec.TypeGameCommit:
		var msg codec.GameCommitTx
		if err := json.Unmarshal(env.Value, &msg); err != nil {
			return nil, game.ErrInvalidRequest.Wrap("bad game/commit value")
		}
		c, cerr := game.CommitmentFromBytes(msg.Commitment)
		if cerr != nil {
			return nil, cerr
		}
		err = k.CommitAction(game.Address(msg.Player), c)

	case codec.TypeGameAdvance:
		err = k.AdvancePhase()

	case codec.TypeGameReveal:
		var msg codec.GameRevealTx
		if err := json.Unmarshal(env.Value, &msg); err != nil {
			return nil, game.ErrInvalidRequest.Wrap("bad game/reveal value")
		}
		err = k.RevealAction(game.Address(msg.Player), game.Action(msg.Action), msg.Proof)

	case codec.TypeGameFinalise:
		var msg codec.GameFinaliseTx
		if err := json.Unmarshal(env.Value, &msg); err != nil {
			return nil, game.ErrInvalidRequest.Wrap("bad game/finalise value")
		}
		err = k.FinaliseTurn(msg.DeltaOne, msg.DeltaTwo)
	}
	if err != nil {
		return nil, err
	}
	return em.Events(), nil
}

func registerAccount(kv *store.CacheStore, env codec.TxEnvelope) ([]game.Event, error) {
	var msg codec.AuthRegisterAccountTx
	if err := json.Unmarshal(env.Value, &msg); err != nil {
		return nil, game.ErrInvalidRequest.Wrap("bad auth/register_account value")
	}
	if err := requireRegisterAccountAuth(env, msg); err != nil {
		return nil, err
	}
	existing, err := kv.Get(AccountKey(msg.Account))
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, game.ErrInvalidRequest.Wrapf("account %q already registered", msg.Account)
	}
	if err := consumeNonce(kv, env); err != nil {
		return nil, err
	}
	if err := kv.Set(AccountKey(msg.Account), msg.PubKey); err != nil {
		return nil, err
	}
	return []game.Event{game.NewEvent("AccountRegistered", map[string]string{"account": msg.Account})}, nil
}

func toABCIEvents(events []game.Event) []abci.Event {
	out := make([]abci.Event, 0, len(events))
	for _, ev := range events {
		abciEv := abci.Event{Type: ev.Type}
		for _, attr := range ev.Attributes {
			abciEv.Attributes = append(abciEv.Attributes, abci.EventAttribute{Key: attr.Key, Value: attr.Value, Index: true})
		}
		out = append(out, abciEv)
	}
	return out
}

func txErr(err error) *abci.ExecTxResult {
	codespace, code, logMsg := errorsmod.ABCIInfo(err, false)
	return &abci.ExecTxResult{Code: code, Codespace: codespace, Log: logMsg}
}

func checkTxErr(err error) *abci.CheckTxResponse {
	codespace, code, logMsg := errorsmod.ABCIInfo(err, false)
	return &abci.CheckTxResponse{Code: code, Codespace: codespace, Log: logMsg}
}
