package main

import (
	"context"
	"errors"
	"io"

	"github.com/spf13/cobra"
)

// skipApp marks commands that run without configuration or storage.
const skipApp = "skip-app"

type cli struct {
	app      *app
	envFiles []string
}

// execute runs one command line and releases storage afterwards, even when the
// command failed (cobra skips post-run hooks on error).
func execute(ctx context.Context, args []string, out io.Writer) error {
	root, c := newRootCmd()
	root.SetArgs(args)
	root.SetOut(out)

	err := root.ExecuteContext(ctx)
	if c.app != nil {
		err = errors.Join(err, c.app.close())
	}
	return err
}

func newRootCmd() (*cobra.Command, *cli) {
	c := &cli{}
	root := &cobra.Command{
		Use:           "authenticator",
		Short:         "Time-based one-time password authenticator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Annotations[skipApp] != "" {
				return nil
			}
			ctx := context.WithValue(cmd.Context(), commandKey{}, cmd.Name())
			cmd.SetContext(ctx)

			a, err := newApp(ctx, c.envFiles...)
			if err != nil {
				return err
			}
			c.app = a
			return nil
		},
	}
	root.PersistentFlags().StringSliceVar(&c.envFiles, "env-file", nil, "dotenv files to load before reading the environment (default .env)")

	root.AddCommand(
		newAddCmd(c),
		newEditCmd(c),
		newRemoveCmd(c),
		newListCmd(c),
		newCodeCmd(c),
		newVerifyCmd(c),
		newWatchCmd(c),
		newExportCmd(c),
		newImportCmd(c),
		newHealthCmd(c),
		newKeygenCmd(),
	)
	return root, c
}
