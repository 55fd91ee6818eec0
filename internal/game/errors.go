package game

import errorsmod "cosmossdk.io/errors"

// x/vaultwars sentinel errors.
var (
	ErrUnauthorized   = errorsmod.Register(ModuleName, 1, "unauthorized")
	ErrUninitialized  = errorsmod.Register(ModuleName, 2, "game not initialised")
	ErrWrongPhase     = errorsmod.Register(ModuleName, 3, "wrong phase")
	ErrUnknownPlayer  = errorsmod.Register(ModuleName, 4, "unknown player")
	ErrInvalidRequest = errorsmod.Register(ModuleName, 5, "invalid request")
	ErrCommitMissing  = errorsmod.Register(ModuleName, 6, "commitment missing")
	ErrNotFound       = errorsmod.Register(ModuleName, 7, "not found")
)
