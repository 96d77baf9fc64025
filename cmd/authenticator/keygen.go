package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/authenticator/pkg/totp"
)

func newKeygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "keygen",
		Short:       "Print a fresh TOTP_ENCRYPTION_KEY and a fresh Base32 secret",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipApp: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := totp.GenerateEncodedEncryptionKey()
			if err != nil {
				return err
			}
			secret, err := totp.GenerateSecretKey()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "TOTP_ENCRYPTION_KEY=%s\nTOTP_SECRET=%s\n", key, secret)
			return nil
		},
	}
}
