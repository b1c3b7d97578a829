package protovend

import (
	"github.com/bianoble/protovend/internal/config"
	"github.com/bianoble/protovend/internal/engine"
)

// Type aliases re-export engine result types as the public API.

type DependencyOutcome = engine.DependencyOutcome
type DependencyError = engine.DependencyError
type BatchError = engine.BatchError
type FileAction = engine.FileAction
type ReconcileResult = engine.ReconcileResult
type VendorResult = engine.VendorResult
type Status = engine.Status
type AddOutcome = config.AddOutcome

// Status states.
const (
	StateLocked     = engine.StateLocked
	StateUnresolved = engine.StateUnresolved
	StateChanged    = engine.StateChanged
	StateOrphaned   = engine.StateOrphaned
)

// Reconciliation actions.
const (
	ActionReused   = engine.ActionReused
	ActionResolved = engine.ActionResolved
	ActionFailed   = engine.ActionFailed
)
