package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tabrefresh/tabrefresh/cli/core"
	"github.com/tabrefresh/tabrefresh/tableau"
	"go.uber.org/zap"
)

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return core.Usagef("unexpected argument %q for %q", args[0], cmd.CommandPath())
	}
	return nil
}

// ensureSecret prompts for the token secret when it was not supplied.
func ensureSecret(p *core.Params) error {
	if p.TokenValue != "" {
		return nil
	}
	secret, err := core.PromptSecret(fmt.Sprintf("%s Secret:", p.TokenName))
	if err != nil {
		return core.Failed("Authentication", err)
	}
	p.TokenValue = secret
	return nil
}

func newClient(p core.Params) (*tableau.Client, error) {
	opts := []tableau.ClientOption{
		tableau.WithTLS(tableau.TLSOptions{InsecureSkipVerify: p.Insecure, CACertFile: p.CACertFile}),
		tableau.WithLogger(core.Logger()),
	}
	if p.APIVersion != "" {
		opts = append(opts, tableau.WithAPIVersion(p.APIVersion))
	}
	return tableau.NewClient(p.Server, opts...)
}

// withSession negotiates the API version, signs in and runs fn. The
// session is signed out whatever fn returns.
func withSession(ctx context.Context, p core.Params, fn func(ctx context.Context, s *tableau.Session) error) error {
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}
	if p.Insecure {
		core.PrintWarning("TLS certificate verification is disabled")
	}

	client, err := newClient(p)
	if err != nil {
		return core.Failed("Authentication", err)
	}
	if client.APIVersion == "" {
		err := core.RunWithSpinner("Negotiating REST API version...", func() error {
			_, err := client.UseServerVersion(ctx)
			return err
		})
		if err != nil {
			return core.Failed("Authentication", err)
		}
	}
	core.Logger().Debug("resolved parameters", zap.Stringer("params", p), zap.String("api_version", client.APIVersion))
	core.SetSentryTag("api_version", client.APIVersion)

	core.PrintInfo(fmt.Sprintf("Signing into %s", p.Server))
	signedIn := false
	err = client.WithSession(ctx, p.Auth(), func(ctx context.Context, s *tableau.Session) error {
		signedIn = true
		core.PrintSuccess("Successfully signed into Tableau Server")
		return fn(ctx, s)
	})
	if err != nil && !signedIn {
		return core.Failed("Authentication", err)
	}
	return err
}

func kindTitle(kind tableau.ContentType) string {
	s := string(kind)
	if s == "" {
		return s
	}
	return string(s[0]-'a'+'A') + s[1:]
}
