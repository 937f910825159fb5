package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/spf13/cobra"

	"github.com/teemow/wbxmeet/internal/meetings"
	"github.com/teemow/wbxmeet/internal/resources"
	"github.com/teemow/wbxmeet/internal/server"
	"github.com/teemow/wbxmeet/internal/webexauth"
	"github.com/teemow/wbxmeet/internal/xmlapi"
)

func newGenerateDocsCmd() *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "generate-docs",
		Short: "Generate MCP tool documentation",
		Long: `Generate markdown documentation for the tools and resources served by
"wbxmeet serve". The tools are registered exactly as the server registers
them, so the reference cannot drift from the implementation.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			markdown, err := buildToolsReference()
			if err != nil {
				return err
			}
			if outputFile == "" {
				_, err := io.WriteString(cmd.OutOrStdout(), markdown)
				return err
			}
			if err := os.WriteFile(outputFile, []byte(markdown), 0o644); err != nil {
				return fmt.Errorf("failed to write output file: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Documentation written to: %s\n", outputFile)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	return cmd
}

// toolDoc is a registered tool and whether it needs --yolo.
type toolDoc struct {
	tool  mcp.Tool
	write bool
}

// buildToolsReference registers the tools twice, read-only and with writes
// enabled, and documents the union.
func buildToolsReference() (string, error) {
	readOnly, err := registeredTools(true)
	if err != nil {
		return "", err
	}
	all, err := registeredTools(false)
	if err != nil {
		return "", err
	}

	docs := make([]toolDoc, 0, len(all))
	for name, tool := range all {
		_, ro := readOnly[name]
		docs = append(docs, toolDoc{tool: tool, write: !ro})
	}
	return generateToolsMarkdown(docs, resources.Definitions()), nil
}

func registeredTools(readOnly bool) (map[string]mcp.Tool, error) {
	// Registration sends no requests, so a placeholder token is enough
	sc, err := server.NewServerContext(context.Background(), server.ServerContextConfig{
		Meetings:      meetings.NewClient(xmlapi.NewClient()),
		Tokens:        webexauth.StaticTokenProvider("docs"),
		OAuthSiteName: "docs",
		OAuthWebExID:  "docs",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() { _ = sc.Shutdown() }()

	mcpSrv := newMCPServer()
	if err := registerAllTools(mcpSrv, sc, readOnly); err != nil {
		return nil, err
	}

	tools := make(map[string]mcp.Tool)
	for name, st := range mcpSrv.ListTools() {
		tools[name] = st.Tool
	}
	return tools, nil
}

func generateToolsMarkdown(tools []toolDoc, res []mcp.Resource) string {
	var sb strings.Builder

	sb.WriteString("# MCP Tools Reference\n\n")
	sb.WriteString("Tools and resources served by `wbxmeet serve` over standard input/output.\n\n")
	sb.WriteString("**Note:** This document is generated by `wbxmeet generate-docs`. Do not edit it by hand.\n\n")

	byCategory := make(map[string][]toolDoc)
	for _, d := range tools {
		c := getCategoryFromToolName(d.tool.Name)
		byCategory[c] = append(byCategory[c], d)
	}
	categories := make([]string, 0, len(byCategory))
	for c := range byCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	sb.WriteString("## Table of Contents\n\n")
	for _, c := range categories {
		fmt.Fprintf(&sb, "- [%s](#%s)\n", c, markdownAnchor(c))
	}
	if len(res) > 0 {
		sb.WriteString("- [Resources](#resources)\n")
	}
	sb.WriteString("\n")

	sb.WriteString("## Authentication Modes\n\n")
	sb.WriteString("- **Credentials (default):** the server authenticates with `PASSWORD` or `ACCESS_TOKEN` on the first call and renews the session ticket when it expires. Only the `default` account exists.\n")
	sb.WriteString("- **OAuth (`serve --oauth`):** every call uses the cached OAuth token of the `account` argument. Log in once per account with `wbxmeet oauth serve --account <name>`.\n\n")
	sb.WriteString("Dates are accepted as RFC3339 (`2019-07-18T13:05:00Z`), converted into `time_zone_id`, or as `MM/DD/YYYY HH:MM:SS` wall-clock time of `time_zone_id`.\n\n")

	for _, c := range categories {
		list := byCategory[c]
		sort.Slice(list, func(i, j int) bool { return list[i].tool.Name < list[j].tool.Name })

		fmt.Fprintf(&sb, "## %s\n\n", c)
		for _, d := range list {
			sb.WriteString(generateToolMarkdown(d))
			sb.WriteString("\n")
		}
	}

	if len(res) > 0 {
		sb.WriteString("## Resources\n\n")
		sb.WriteString("| URI | Name | Description |\n")
		sb.WriteString("|---|---|---|\n")
		for _, r := range res {
			fmt.Fprintf(&sb, "| `%s` | %s | %s |\n", r.URI, r.Name, r.Description)
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func markdownAnchor(heading string) string {
	return strings.ToLower(strings.ReplaceAll(heading, " ", "-"))
}

func getCategoryFromToolName(name string) string {
	prefix, _, _ := strings.Cut(name, "_")
	switch prefix {
	case "webex":
		return "Webex Meetings Tools"
	default:
		return "Other"
	}
}

func generateToolMarkdown(d toolDoc) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "### %s\n\n", d.tool.Name)
	if d.tool.Description != "" {
		fmt.Fprintf(&sb, "%s\n\n", d.tool.Description)
	}
	if d.write {
		sb.WriteString("*Write operation, registered only with `serve --yolo`.*\n\n")
	}

	props := d.tool.InputSchema.Properties
	if len(props) == 0 {
		return sb.String()
	}

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	sb.WriteString("| Argument | Type | Required | Description |\n")
	sb.WriteString("|---|---|---|---|\n")
	for _, name := range names {
		prop, ok := props[name].(map[string]any)
		if !ok {
			continue
		}
		required := "no"
		if slices.Contains(d.tool.InputSchema.Required, name) {
			required = "yes"
		}
		desc, _ := prop["description"].(string)
		fmt.Fprintf(&sb, "| `%s` | %s | %s | %s |\n", name, getPropertyType(prop), required, strings.ReplaceAll(desc, "|", `\|`))
	}
	return sb.String()
}

func getPropertyType(prop map[string]any) string {
	if t, ok := prop["type"].(string); ok {
		return t
	}
	return "any"
}
