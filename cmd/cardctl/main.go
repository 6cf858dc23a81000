// Command cardctl runs the card tooling offline: normalizing backend records, deriving
// slugs and prices, and rendering previews without a running server.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/juantap/web/internal/platform/requestctx"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

type rootOptions struct {
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "cardctl",
		Short:         "Offline tooling for digital business card templates",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(cmd, opts.logLevel)
			if err != nil {
				return err
			}
			cmd.SetContext(requestctx.WithLogger(cmd.Context(), logger))
			return nil
		},
	}
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level written to stderr (debug, info, warn, error)")

	root.AddCommand(
		newNormalizeCmd(),
		newSlugCmd(),
		newPriceCmd(),
		newRenderCmd(),
		newVariantsCmd(),
	)
	return root
}

// newLogger writes console-encoded logs to the command's stderr so stdout stays
// machine-readable.
func newLogger(cmd *cobra.Command, level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		return nil, fmt.Errorf("invalid --log-level %q", level)
	}
	encoder := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	core := zapcore.NewCore(encoder, zapcore.AddSync(cmd.ErrOrStderr()), lvl)
	return zap.New(core).Named("cardctl"), nil
}
