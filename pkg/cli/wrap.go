// pkg/cli/wrap.go

package cli

import (
	"context"

	cerr "github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/serentry/dbvault/pkg/dberr"
	"github.com/serentry/dbvault/pkg/vaultctx"
)

// Wrap adapts an operation taking a RuntimeContext into a cobra RunE:
// context construction, panic recovery, outcome logging, and stack
// capture for unexpected errors all live here instead of in every
// command.
func Wrap(fn func(rc *vaultctx.RuntimeContext, cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		rc := vaultctx.NewContext(context.Background(), cmd.Name())
		defer rc.End(&err)

		defer func() {
			if r := recover(); r != nil {
				err = cerr.AssertionFailedf("panic: %v", r)
				rc.Log.Error("Panic recovered", zap.Any("panic", r))
			}
		}()

		err = fn(rc, cmd, args)
		if err != nil && !dberr.IsExpectedUserError(err) {
			err = cerr.WithStack(err)
		}
		return err
	}
}
