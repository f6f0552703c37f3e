package core

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/tabrefresh/tabrefresh/tableau"
)

// ParamFlags holds raw flag values before they are merged with the
// environment and the config file.
type ParamFlags struct {
	Server     string
	Name       string
	Project    string
	Type       string
	TokenName  string
	TokenValue string
	SiteURL    string
	Insecure   bool
	CACertFile string
	APIVersion string
	Timeout    time.Duration

	// SiteURLSet is true when --site_url was given, even as "".
	SiteURLSet bool
}

// Params are the resolved invocation parameters. They do not change for
// the rest of the run.
type Params struct {
	Server     string
	Name       string
	Project    string
	Type       tableau.ContentType
	TokenName  string
	TokenValue string
	SiteURL    string
	Insecure   bool
	CACertFile string
	APIVersion string
	Timeout    time.Duration
}

// Target returns what the locator should look for.
func (p Params) Target() tableau.Target {
	return tableau.Target{Kind: p.Type, Name: p.Name, Project: p.Project}
}

// Auth returns the sign-in credentials.
func (p Params) Auth() tableau.PersonalAccessTokenAuth {
	return tableau.PersonalAccessTokenAuth{TokenName: p.TokenName, TokenValue: p.TokenValue, SiteURL: p.SiteURL}
}

// BindParamFlags registers the invocation flags on cmd.
func BindParamFlags(cmd *cobra.Command, f *ParamFlags) {
	cmd.Flags().StringVarP(&f.Server, "server", "s", "", "Tableau Server URL")
	cmd.Flags().StringVarP(&f.Name, "name", "n", "", "Name of the workbook or datasource")
	cmd.Flags().StringVarP(&f.Project, "project", "p", "", "Project that hosts the workbook or datasource")
	cmd.Flags().StringVarP(&f.Type, "type", "x", "", "Type of content: workbook or datasource")
	cmd.Flags().StringVarP(&f.TokenName, "token", "t", "", "Personal access token name")
	cmd.Flags().StringVarP(&f.TokenValue, "token_value", "v", "", "Personal access token secret (prompted if omitted)")
	cmd.Flags().StringVarP(&f.SiteURL, "site_url", "u", "", "Content URL of the site (default site when empty)")
	cmd.Flags().BoolVarP(&f.Insecure, "insecure", "k", false, "Skip TLS certificate verification")
	cmd.Flags().StringVar(&f.CACertFile, "ca-cert", "", "PEM file with additional CA certificates to trust")
	cmd.Flags().StringVar(&f.APIVersion, "api-version", "", "REST API version to use instead of asking the server")
	cmd.Flags().DurationVar(&f.Timeout, "timeout", 0, "Overall deadline for the run, e.g. 2m (0 means none)")
	_ = cmd.RegisterFlagCompletionFunc("type", completeContentType)
}

// LookupFunc reads an environment variable.
type LookupFunc func(key string) (string, bool)

// ResolveOptions controls which fields are mandatory.
type ResolveOptions struct {
	RequireProject bool
	Lookup         LookupFunc
}

// ResolveParams merges flags, environment and config, in that order of
// precedence, and validates the result. The token value may stay empty;
// it is prompted for later.
func ResolveParams(f ParamFlags, cfg Config, opts ResolveOptions) (Params, error) {
	lookup := opts.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	env := func(key string) string {
		v, _ := lookup(key)
		return v
	}

	p := Params{
		Server:     firstNonEmpty(f.Server, env(EnvServer), cfg.Server),
		Name:       f.Name,
		Project:    f.Project,
		TokenName:  firstNonEmpty(f.TokenName, env(EnvTokenName), cfg.TokenName),
		TokenValue: firstNonEmpty(f.TokenValue, env(EnvTokenValue)),
		CACertFile: firstNonEmpty(f.CACertFile, env(EnvCACert), cfg.CACert),
		APIVersion: firstNonEmpty(f.APIVersion, cfg.APIVersion),
		Timeout:    f.Timeout,
	}

	switch {
	case f.SiteURLSet:
		p.SiteURL = f.SiteURL
	case hasEnv(lookup, EnvSiteURL):
		p.SiteURL = env(EnvSiteURL)
	case cfg.SiteURL != nil:
		p.SiteURL = *cfg.SiteURL
	}

	p.Insecure = f.Insecure || cfg.Insecure
	if v := env(EnvInsecure); v != "" {
		insecure, err := strconv.ParseBool(v)
		if err != nil {
			return Params{}, Usagef("invalid value %q for %s: %v", v, EnvInsecure, err)
		}
		p.Insecure = f.Insecure || insecure
	}

	if p.Timeout == 0 && cfg.Timeout != "" {
		d, err := time.ParseDuration(cfg.Timeout)
		if err != nil {
			return Params{}, Usagef("invalid timeout %q in config: %v", cfg.Timeout, err)
		}
		p.Timeout = d
	}
	if p.Timeout < 0 {
		return Params{}, Usagef("timeout must not be negative")
	}

	var missing []string
	if p.Server == "" {
		missing = append(missing, `"server"`)
	}
	if p.Name == "" {
		missing = append(missing, `"name"`)
	}
	if p.Project == "" && opts.RequireProject {
		missing = append(missing, `"project"`)
	}
	if f.Type == "" {
		missing = append(missing, `"type"`)
	}
	if p.TokenName == "" {
		missing = append(missing, `"token"`)
	}
	if len(missing) > 0 {
		return Params{}, Usagef("required flag(s) %s not set", strings.Join(missing, ", "))
	}

	kind, ok := tableau.ParseContentType(strings.ToLower(f.Type))
	if !ok {
		return Params{}, Usagef("invalid argument %q for \"-x, --type\" flag: must be one of %s", f.Type, contentTypeNames())
	}
	p.Type = kind
	return p, nil
}

func contentTypeNames() string {
	names := make([]string, 0, len(tableau.ContentTypes))
	for _, ct := range tableau.ContentTypes {
		names = append(names, string(ct))
	}
	return strings.Join(names, ", ")
}

func hasEnv(lookup LookupFunc, key string) bool {
	_, ok := lookup(key)
	return ok
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// String is used for debugging; it never includes the token value.
func (p Params) String() string {
	return fmt.Sprintf("%s %s/%s on %s (site %q, token %s)", p.Type, p.Project, p.Name, p.Server, p.SiteURL, p.TokenName)
}
