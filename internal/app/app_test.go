package app

import (
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/json"
	"testing"

	"cosmossdk.io/log"
	abci "github.com/cometbft/cometbft/abci/types"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/stretchr/testify/require"

	"github.com/leocagli/Human-vs-bots/internal/codec"
	"github.com/leocagli/Human-vs-bots/internal/game"
)

type harness struct {
	t      *testing.T
	app    *VaultApp
	db     dbm.DB
	height int64
	nonces map[string]uint64
}

func testKey(name string) ed25519.PrivateKey {
	seed := sha256.Sum256([]byte("vaultwars-test-key:" + name))
	return ed25519.NewKeyFromSeed(seed[:])
}

func newHarness(t *testing.T, opts Options) *harness {
	t.Helper()
	db := dbm.NewMemDB()
	a, err := New(db, log.NewNopLogger(), opts)
	require.NoError(t, err)
	return &harness{t: t, app: a, db: db, nonces: map[string]uint64{}}
}

func (h *harness) signed(typ string, value any, signer string) []byte {
	h.t.Helper()
	h.nonces[signer]++
	b, err := codec.EncodeSignedTx(typ, value, h.nonces[signer], signer, testKey(signer))
	require.NoError(h.t, err)
	return b
}

func (h *harness) unsigned(typ string, value any) []byte {
	h.t.Helper()
	b, err := codec.EncodeTx(typ, value)
	require.NoError(h.t, err)
	return b
}

func (h *harness) register(names ...string) {
	h.t.Helper()
	for _, name := range names {
		pub := testKey(name).Public().(ed25519.PublicKey)
		h.mustOk(h.signed(codec.TypeAuthRegisterAccount, codec.AuthRegisterAccountTx{Account: name, PubKey: pub}, name))
	}
}

// block finalizes and commits one block.
func (h *harness) block(txs ...[]byte) *abci.FinalizeBlockResponse {
	h.t.Helper()
	h.height++
	res, err := h.app.FinalizeBlock(context.Background(), &abci.FinalizeBlockRequest{Height: h.height, Txs: txs})
	require.NoError(h.t, err)
	_, err = h.app.Commit(context.Background(), &abci.CommitRequest{})
	require.NoError(h.t, err)
	return res
}

func (h *harness) mustOk(tx []byte) *abci.ExecTxResult {
	h.t.Helper()
	res := h.block(tx).TxResults[0]
	require.Zero(h.t, res.Code, "log=%q", res.Log)
	return res
}

func (h *harness) mustFail(tx []byte, want interface{ ABCICode() uint32 }) *abci.ExecTxResult {
	h.t.Helper()
	res := h.block(tx).TxResults[0]
	require.Equal(h.t, want.ABCICode(), res.Code, "log=%q", res.Log)
	require.Equal(h.t, game.ModuleName, res.Codespace)
	return res
}

func (h *harness) state() game.GameState {
	h.t.Helper()
	res, err := h.app.Query(context.Background(), &abci.QueryRequest{Path: "/state"})
	require.NoError(h.t, err)
	require.Zero(h.t, res.Code, "log=%q", res.Log)
	var st game.GameState
	require.NoError(h.t, json.Unmarshal(res.Value, &st))
	return st
}

func findEvent(events []abci.Event, typ string) *abci.Event {
	for i := range events {
		if events[i].Type == typ {
			return &events[i]
		}
	}
	return nil
}

func attr(ev *abci.Event, key string) string {
	if ev == nil {
		return ""
	}
	for _, a := range ev.Attributes {
		if a.Key == key {
			return a.Value
		}
	}
	return ""
}

func commitment(b byte) []byte {
	c := make([]byte, 32)
	c[0] = b
	return c
}

func setupGame(t *testing.T, opts Options) *harness {
	t.Helper()
	h := newHarness(t, opts)
	h.register("alice", "bob", "relayer")
	h.mustOk(h.signed(codec.TypeGameInit, codec.GameInitTx{PlayerOne: "alice", PlayerTwo: "bob"}, "alice"))
	return h
}

func TestFullTurnThroughABCI(t *testing.T) {
	h := setupGame(t, Options{})

	h.mustOk(h.signed(codec.TypeGameCommit, codec.GameCommitTx{Player: "alice", Commitment: commitment(1)}, "alice"))
	h.mustOk(h.signed(codec.TypeGameCommit, codec.GameCommitTx{Player: "bob", Commitment: commitment(2)}, "bob"))
	require.Equal(t, game.PhaseCommit, h.state().Phase)

	res := h.mustOk(h.signed(codec.TypeGameAdvance, codec.GameAdvanceTx{}, "relayer"))
	require.NotNil(t, findEvent(res.Events, game.EventTypePhaseAdvanced))
	require.Equal(t, game.PhaseReveal, h.state().Phase)

	res = h.mustOk(h.signed(codec.TypeGameReveal, codec.GameRevealTx{Player: "alice", Action: "Attack", Proof: []byte("pa")}, "alice"))
	require.Equal(t, "attack", attr(findEvent(res.Events, game.EventTypeActionRevealed), "action"))
	h.mustOk(h.signed(codec.TypeGameReveal, codec.GameRevealTx{Player: "bob", Action: "vault", Proof: []byte("pb")}, "bob"))

	res = h.mustOk(h.signed(codec.TypeGameFinalise, codec.GameFinaliseTx{DeltaOne: 2, DeltaTwo: -1}, "relayer"))
	require.Equal(t, "1", attr(findEvent(res.Events, game.EventTypeTurnFinalised), "turn"))

	st := h.state()
	require.Equal(t, uint32(2), st.Turn)
	require.Equal(t, game.PhaseCommit, st.Phase)
	require.Equal(t, [2]int32{2, -1}, st.Scores)

	q, err := h.app.Query(context.Background(), &abci.QueryRequest{Path: "/commit/2"})
	require.NoError(t, err)
	require.Zero(t, q.Code)
	var c game.VaultCommit
	require.NoError(t, json.Unmarshal(q.Value, &c))
	require.Equal(t, byte(2), c.Commitment[0])
}

func TestInitGame_SignerMustBePlayerOne(t *testing.T) {
	h := newHarness(t, Options{})
	h.register("alice", "bob")
	h.mustFail(h.signed(codec.TypeGameInit, codec.GameInitTx{PlayerOne: "alice", PlayerTwo: "bob"}, "bob"), game.ErrUnauthorized)

	res, err := h.app.Query(context.Background(), &abci.QueryRequest{Path: "/state"})
	require.NoError(t, err)
	require.Equal(t, game.ErrUninitialized.ABCICode(), res.Code)
}

func TestCommit_RejectsUnknownPlayerAndImpersonation(t *testing.T) {
	h := setupGame(t, Options{})
	h.register("mallory")

	h.mustFail(h.signed(codec.TypeGameCommit, codec.GameCommitTx{Player: "mallory", Commitment: commitment(9)}, "mallory"), game.ErrUnknownPlayer)
	h.mustFail(h.signed(codec.TypeGameCommit, codec.GameCommitTx{Player: "alice", Commitment: commitment(9)}, "mallory"), game.ErrUnauthorized)
	h.mustFail(h.signed(codec.TypeGameCommit, codec.GameCommitTx{Player: "alice", Commitment: []byte{1, 2, 3}}, "alice"), game.ErrInvalidRequest)
}

func TestReveal_WrongPhase(t *testing.T) {
	h := setupGame(t, Options{})
	h.mustFail(h.signed(codec.TypeGameReveal, codec.GameRevealTx{Player: "alice", Action: "attack"}, "alice"), game.ErrWrongPhase)
}

func TestUnsignedTxCannotActAsPlayer(t *testing.T) {
	h := setupGame(t, Options{})
	h.mustFail(h.unsigned(codec.TypeGameCommit, codec.GameCommitTx{Player: "alice", Commitment: commitment(1)}), game.ErrUnauthorized)
}

func TestFinalise_UnsignedAllowedWithoutRelayer(t *testing.T) {
	h := setupGame(t, Options{})
	h.mustOk(h.unsigned(codec.TypeGameFinalise, codec.GameFinaliseTx{DeltaOne: 1, DeltaTwo: 1}))
	require.Equal(t, [2]int32{1, 1}, h.state().Scores)
}

func TestRelayerOps_RestrictedWhenRelayerConfigured(t *testing.T) {
	h := setupGame(t, Options{Relayer: "relayer"})

	h.mustFail(h.unsigned(codec.TypeGameFinalise, codec.GameFinaliseTx{DeltaOne: 1}), game.ErrUnauthorized)
	h.mustFail(h.signed(codec.TypeGameFinalise, codec.GameFinaliseTx{DeltaOne: 1}, "alice"), game.ErrUnauthorized)
	h.mustFail(h.signed(codec.TypeGameAdvance, codec.GameAdvanceTx{}, "bob"), game.ErrUnauthorized)

	h.mustOk(h.signed(codec.TypeGameFinalise, codec.GameFinaliseTx{DeltaOne: 1}, "relayer"))
	require.Equal(t, [2]int32{1, 0}, h.state().Scores)
}

func TestNonceReplayRejected(t *testing.T) {
	h := setupGame(t, Options{})
	tx := h.signed(codec.TypeGameCommit, codec.GameCommitTx{Player: "alice", Commitment: commitment(1)}, "alice")
	h.mustOk(tx)
	h.mustFail(tx, game.ErrUnauthorized)
}

func TestTamperedSignatureRejected(t *testing.T) {
	h := setupGame(t, Options{})
	tx := h.signed(codec.TypeGameCommit, codec.GameCommitTx{Player: "alice", Commitment: commitment(1)}, "alice")

	env, err := codec.DecodeTxEnvelope(tx)
	require.NoError(t, err)
	env.Value = json.RawMessage(`{"player":"alice","commitment":"` + "AgAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA=" + `"}`)
	tampered, err := json.Marshal(env)
	require.NoError(t, err)
	h.mustFail(tampered, game.ErrUnauthorized)
}

func TestRegisterAccount_Twice(t *testing.T) {
	h := newHarness(t, Options{})
	h.register("alice")
	pub := testKey("alice").Public().(ed25519.PublicKey)
	h.mustFail(h.signed(codec.TypeAuthRegisterAccount, codec.AuthRegisterAccountTx{Account: "alice", PubKey: pub}, "alice"), game.ErrInvalidRequest)

	res, err := h.app.Query(context.Background(), &abci.QueryRequest{Path: "/account/alice"})
	require.NoError(t, err)
	require.Zero(t, res.Code)
	var out struct {
		Addr  string `json:"addr"`
		Nonce uint64 `json:"nonce"`
	}
	require.NoError(t, json.Unmarshal(res.Value, &out))
	require.Equal(t, "alice", out.Addr)
	require.Equal(t, uint64(1), out.Nonce)
}

func TestFailedTxLeavesAppHashUnchanged(t *testing.T) {
	h1 := newHarness(t, Options{})
	h2 := newHarness(t, Options{})

	r1 := h1.block(h1.unsigned(codec.TypeGameFinalise, codec.GameFinaliseTx{DeltaOne: 1}))
	require.Equal(t, game.ErrUninitialized.ABCICode(), r1.TxResults[0].Code)
	r2 := h2.block()
	require.Equal(t, r2.AppHash, r1.AppHash)

	// A successful tx does change it.
	h1.register("alice")
	h2.block()
	require.NotEqual(t, h2.app.lastHash, h1.app.lastHash)
}

func TestStateSurvivesRestart(t *testing.T) {
	h := setupGame(t, Options{})
	h.mustOk(h.unsigned(codec.TypeGameFinalise, codec.GameFinaliseTx{DeltaOne: 4, DeltaTwo: 1}))

	restarted, err := New(h.db, log.NewNopLogger(), Options{})
	require.NoError(t, err)
	info, err := restarted.Info(context.Background(), &abci.InfoRequest{})
	require.NoError(t, err)
	require.Equal(t, h.height, info.LastBlockHeight)
	require.Equal(t, h.app.lastHash, info.LastBlockAppHash)

	h.app = restarted
	require.Equal(t, [2]int32{4, 1}, h.state().Scores)
}

func TestUncommittedBlockIsNotPersisted(t *testing.T) {
	h := setupGame(t, Options{})
	_, err := h.app.FinalizeBlock(context.Background(), &abci.FinalizeBlockRequest{
		Height: h.height + 1,
		Txs:    [][]byte{h.unsigned(codec.TypeGameFinalise, codec.GameFinaliseTx{DeltaOne: 9})},
	})
	require.NoError(t, err)

	// Queries read committed state only.
	require.Equal(t, [2]int32{0, 0}, h.state().Scores)
}

func TestCheckTx(t *testing.T) {
	h := newHarness(t, Options{})
	res, err := h.app.CheckTx(context.Background(), &abci.CheckTxRequest{Tx: h.unsigned("poker/act", map[string]any{})})
	require.NoError(t, err)
	require.Equal(t, game.ErrInvalidRequest.ABCICode(), res.Code)

	res, err = h.app.CheckTx(context.Background(), &abci.CheckTxRequest{Tx: []byte("{not json")})
	require.NoError(t, err)
	require.NotZero(t, res.Code)

	res, err = h.app.CheckTx(context.Background(), &abci.CheckTxRequest{Tx: h.unsigned(codec.TypeGameAdvance, codec.GameAdvanceTx{})})
	require.NoError(t, err)
	require.Zero(t, res.Code)
}

func TestQuery_UnknownPath(t *testing.T) {
	h := newHarness(t, Options{})
	res, err := h.app.Query(context.Background(), &abci.QueryRequest{Path: "/tables"})
	require.NoError(t, err)
	require.Equal(t, game.ErrInvalidRequest.ABCICode(), res.Code)

	res, err = h.app.Query(context.Background(), &abci.QueryRequest{Path: "/commit/3"})
	require.NoError(t, err)
	require.Equal(t, game.ErrInvalidRequest.ABCICode(), res.Code)

	res, err = h.app.Query(context.Background(), &abci.QueryRequest{Path: "/commit/1"})
	require.NoError(t, err)
	require.Equal(t, game.ErrNotFound.ABCICode(), res.Code)
}
