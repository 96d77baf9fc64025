package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/authenticator/pkg/countdown"
	"github.com/dmitrymomot/authenticator/pkg/logger"
)

const progressWidth = 20

// parseInstant accepts RFC 3339 or Unix seconds. Empty means the zero time (now).
func parseInstant(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	if sec, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(sec, 0), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("time %q is neither RFC 3339 nor Unix seconds", s)
	}
	return t, nil
}

func newCodeCmd(c *cli) *cobra.Command {
	var (
		at     string
		toClip bool
	)
	cmd := &cobra.Command{
		Use:   "code [ID|NAME...]",
		Short: "Print current codes",
		RunE: func(cmd *cobra.Command, args []string) error {
			instant, err := parseInstant(at)
			if err != nil {
				return err
			}
			selected, err := filter(c.app.svc.List(), args)
			if err != nil {
				return err
			}
			if toClip && len(selected) != 1 {
				return errors.New("--copy needs exactly one credential")
			}

			wanted := make(map[string]struct{}, len(selected))
			for _, cred := range selected {
				wanted[cred.ID] = struct{}{}
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			var failed []error
			for _, code := range c.app.svc.Codes(instant) {
				if _, ok := wanted[code.Credential.ID]; !ok {
					continue
				}
				if code.Err != nil {
					failed = append(failed, fmt.Errorf("%s: %w", code.Credential.Label(), code.Err))
					fmt.Fprintf(tw, "%s\t%s\t-\n", code.Credential.Label(), strings.Repeat("-", code.Credential.Digits))
					continue
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", code.Credential.Label(), code.Code, code.Remaining.Truncate(time.Second))
				if toClip {
					if err := clipboard.WriteAll(code.Code); err != nil {
						return err
					}
					c.app.log.InfoContext(cmd.Context(), "code copied to clipboard", logger.CredentialID(code.Credential.ID))
				}
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			return errors.Join(failed...)
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "derive codes for this instant (RFC 3339 or Unix seconds) instead of now")
	cmd.Flags().BoolVar(&toClip, "copy", false, "copy the code to the clipboard")
	return cmd
}

func newVerifyCmd(c *cli) *cobra.Command {
	var at string
	cmd := &cobra.Command{
		Use:   "verify ID|NAME CODE",
		Short: "Check a code against a credential, allowing one step of drift",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			instant, err := parseInstant(at)
			if err != nil {
				return err
			}
			cred, err := resolve(c.app.svc.List(), args[0])
			if err != nil {
				return err
			}
			ok, err := c.app.svc.Verify(cmd.Context(), cred.ID, args[1], instant)
			if err != nil {
				return err
			}
			if !ok {
				return errors.New("code does not match")
			}
			fmt.Fprintln(cmd.OutOrStdout(), "valid")
			return nil
		},
	}
	cmd.Flags().StringVar(&at, "at", "", "verify at this instant (RFC 3339 or Unix seconds) instead of now")
	return cmd
}

func newWatchCmd(c *cli) *cobra.Command {
	var limit time.Duration
	cmd := &cobra.Command{
		Use:   "watch [ID|NAME...]",
		Short: "Keep codes refreshed until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if limit > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, limit)
				defer cancel()
			}

			selected, err := filter(c.app.svc.List(), args)
			if err != nil {
				return err
			}
			if len(selected) == 0 {
				return errors.New("no credentials to watch")
			}
			if len(args) == 0 {
				err = c.app.svc.StartAll()
			} else {
				for _, cred := range selected {
					err = errors.Join(err, c.app.svc.Start(cred.ID))
				}
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			renderOverlays(out, time.Now(), c.app.svc.Snapshot())

			sub := c.app.svc.Subscribe(ctx)
			defer func() { _ = sub.Close() }()
			for {
				select {
				case <-ctx.Done():
					return nil
				case u, ok := <-sub.Receive():
					if !ok {
						if ctx.Err() != nil {
							return nil
						}
						// Dropped for falling behind; pick up from the next tick.
						c.app.log.WarnContext(ctx, "watch subscriber dropped, resubscribing")
						sub = c.app.svc.Subscribe(ctx)
						continue
					}
					renderOverlays(out, u.At, u.Overlays)
				}
			}
		},
	}
	cmd.Flags().DurationVar(&limit, "for", 0, "stop after this long (default: until interrupted)")
	return cmd
}

// renderOverlays prints one line per running credential.
func renderOverlays(w io.Writer, at time.Time, overlays []countdown.Overlay) {
	for _, o := range overlays {
		if !o.Running {
			continue
		}
		code := o.Code
		if o.Err != nil {
			code = "error: " + o.Err.Error()
		}
		fmt.Fprintf(w, "%s  %-30s  %s  %s %2ds\n",
			at.Format(time.TimeOnly), o.Label, code, progressBar(o.Progress), int(o.Remaining.Round(time.Second)/time.Second))
	}
}

func progressBar(progress float64) string {
	filled := min(max(int(progress*progressWidth), 0), progressWidth)
	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", progressWidth-filled) + "]"
}
