package core

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

const docFrontMatter = `---
title: "%s"
slug: %s
---
`

func docCmd() *cobra.Command {
	var format string
	var dir string

	cmd := &cobra.Command{
		Use:    "docs",
		Short:  "Generate documentation for the CLI",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			root.DisableAutoGenTag = true

			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}

			switch format {
			case "markdown":
				filePrepender := func(filename string) string {
					name := filepath.Base(filename)
					base := strings.TrimSuffix(name, path.Ext(name))
					return fmt.Sprintf(docFrontMatter, strings.ReplaceAll(base, "_", " "), base)
				}
				linkHandler := func(name string) string {
					return name
				}
				return doc.GenMarkdownTreeCustom(root, dir, filePrepender, linkHandler)
			case "man":
				header := &doc.GenManHeader{
					Title:   "TABREFRESH",
					Section: "1",
				}
				return doc.GenManTree(root, header, dir)
			case "yaml":
				return doc.GenYamlTree(root, dir)
			default:
				return Usagef("unknown documentation format %q: must be one of markdown, man, yaml", format)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "markdown", "Documentation format (markdown, man, yaml)")
	cmd.Flags().StringVarP(&dir, "dir", "d", "./docs", "Output directory for documentation")

	return cmd
}
