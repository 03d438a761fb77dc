// pkg/vaultctx/context.go

package vaultctx

import (
	"context"
	"time"

	cerr "github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/serentry/dbvault/pkg/dberr"
)

// RuntimeContext carries everything one command invocation needs: the
// cancellation context, a scoped logger, and the invocation metadata.
// It is passed explicitly to every operation; there is no ambient
// session state.
type RuntimeContext struct {
	Ctx        context.Context
	Log        *zap.Logger
	Timestamp  time.Time
	Command    string
	Attributes map[string]string
}

// NewContext builds a RuntimeContext for one command invocation.
func NewContext(ctx context.Context, cmdName string) *RuntimeContext {
	logger := zap.L().With(zap.String("command", cmdName)).Named(cmdName)

	return &RuntimeContext{
		Ctx:        ctx,
		Log:        logger,
		Timestamp:  time.Now(),
		Command:    cmdName,
		Attributes: make(map[string]string),
	}
}

// HandlePanic recovers a panic, logs it, and converts it to an error.
// Meant for deferred use with a named error return.
func (rc *RuntimeContext) HandlePanic(errPtr *error) {
	if r := recover(); r != nil {
		*errPtr = cerr.AssertionFailedf("panic: %v", r)
		rc.Log.Error("Panic recovered", zap.Any("panic", r))
	}
}

// End logs the command outcome. Expected user errors log at Warn without
// a stack; everything else gets the full treatment.
func (rc *RuntimeContext) End(errPtr *error) {
	duration := time.Since(rc.Timestamp)

	if *errPtr == nil {
		rc.Log.Info("Command completed", zap.Duration("duration", duration))
		return
	}

	if dberr.IsExpectedUserError(*errPtr) {
		rc.Log.Warn("Command failed",
			zap.Duration("duration", duration),
			zap.String("reason", (*errPtr).Error()))
		return
	}

	rc.Log.Error("Command failed",
		zap.Duration("duration", duration),
		zap.Error(*errPtr))
}
