package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/authenticator/pkg/registry"
	"github.com/dmitrymomot/authenticator/pkg/totp"
)

var ErrAmbiguousReference = errors.New("reference matches more than one credential")

// credentialFlags are shared by add and edit.
type credentialFlags struct {
	name      string
	issuer    string
	secret    string
	algorithm string
	digits    int
	period    int
}

func (f *credentialFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.name, "name", "", "account name shown in listings")
	fs.StringVar(&f.issuer, "issuer", "", "service that issued the secret")
	fs.StringVar(&f.secret, "secret", "", "Base32 shared secret")
	fs.StringVar(&f.algorithm, "algorithm", totp.DefaultAlgorithm.String(), "HMAC algorithm: SHA1, SHA256 or SHA512")
	fs.IntVar(&f.digits, "digits", totp.DefaultDigits, "code length")
	fs.IntVar(&f.period, "period", totp.DefaultPeriod, "seconds per code")
}

// apply copies every flag the user set onto c.
func (f *credentialFlags) apply(cmd *cobra.Command, c registry.Credential) (registry.Credential, error) {
	fs := cmd.Flags()
	if fs.Changed("name") {
		c.Name = f.name
	}
	if fs.Changed("issuer") {
		c.Issuer = f.issuer
	}
	if fs.Changed("secret") {
		c.Secret = f.secret
	}
	if fs.Changed("algorithm") {
		alg, err := totp.ParseAlgorithm(f.algorithm)
		if err != nil {
			return c, err
		}
		c.Algorithm = alg
	}
	if fs.Changed("digits") {
		c.Digits = f.digits
	}
	if fs.Changed("period") {
		c.Period = f.period
	}
	if fs.Changed("algorithm") || fs.Changed("digits") || fs.Changed("period") {
		// The shape no longer comes from the provider preset.
		c.Preset = ""
	}
	return c, nil
}

func newAddCmd(c *cli) *cobra.Command {
	var (
		flags    credentialFlags
		preset   string
		generate bool
	)
	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a credential",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := registry.ParsePreset(preset)
			if err != nil {
				return err
			}
			cred, err := flags.apply(cmd, registry.Credential{
				Name:      args[0],
				Algorithm: totp.DefaultAlgorithm,
			})
			if err != nil {
				return err
			}
			cred = p.Apply(cred)

			if generate {
				if cred.Secret != "" {
					return errors.New("--generate and --secret are mutually exclusive")
				}
				if cred.Secret, err = totp.GenerateSecretKey(); err != nil {
					return err
				}
			}

			creds, err := c.app.svc.Add(cmd.Context(), cred)
			if err != nil {
				return err
			}
			// The registry appends, so the new entry is last.
			added := creds[len(creds)-1]
			if generate {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\tsecret %s\n", added.ID, added.Secret)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), added.ID)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&preset, "preset", "", "provider preset: Google, Microsoft, GitHub or Other")
	cmd.Flags().BoolVar(&generate, "generate", false, "generate a fresh secret instead of --secret")
	return cmd
}

func newEditCmd(c *cli) *cobra.Command {
	var flags credentialFlags
	cmd := &cobra.Command{
		Use:   "edit ID|NAME",
		Short: "Change fields of a credential",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cred, err := resolve(c.app.svc.List(), args[0])
			if err != nil {
				return err
			}
			if cred, err = flags.apply(cmd, cred); err != nil {
				return err
			}
			if _, err := c.app.svc.Update(cmd.Context(), cred); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cred.ID)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newRemoveCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "rm ID|NAME...",
		Aliases: []string{"remove", "delete"},
		Short:   "Remove credentials",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, ref := range args {
				cred, err := resolve(c.app.svc.List(), ref)
				if err != nil {
					return err
				}
				if _, err := c.app.svc.Delete(cmd.Context(), cred.ID); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cred.ID)
			}
			return nil
		},
	}
}

func newListCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List credentials",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tLABEL\tALGORITHM\tDIGITS\tPERIOD")
			for _, cred := range c.app.svc.List() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%ds\n", cred.ID, cred.Label(), cred.Algorithm, cred.Digits, cred.Period)
			}
			return tw.Flush()
		},
	}
}

// resolve finds a credential by exact ID, then by case-insensitive name or label.
func resolve(creds []registry.Credential, ref string) (registry.Credential, error) {
	ref = strings.TrimSpace(ref)
	for _, cred := range creds {
		if cred.ID == ref {
			return cred, nil
		}
	}

	var found []registry.Credential
	for _, cred := range creds {
		if strings.EqualFold(cred.Name, ref) || strings.EqualFold(cred.Label(), ref) {
			found = append(found, cred)
		}
	}
	switch len(found) {
	case 0:
		return registry.Credential{}, errors.Join(registry.ErrNotFound, fmt.Errorf("no credential matches %q", ref))
	case 1:
		return found[0], nil
	}
	return registry.Credential{}, errors.Join(ErrAmbiguousReference, fmt.Errorf("%q matches %d credentials, use the ID", ref, len(found)))
}

// filter resolves every ref, or returns all credentials when refs is empty.
func filter(creds []registry.Credential, refs []string) ([]registry.Credential, error) {
	if len(refs) == 0 {
		return creds, nil
	}
	out := make([]registry.Credential, 0, len(refs))
	for _, ref := range refs {
		cred, err := resolve(creds, ref)
		if err != nil {
			return nil, err
		}
		out = append(out, cred)
	}
	return out, nil
}
