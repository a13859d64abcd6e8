package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"sglint/internal/config"
	"sglint/internal/driver"
	"sglint/internal/rule"
)

var rulesCmd = &cobra.Command{
	Use:   "rules [path]",
	Short: "List the rules known to sglint and whether they are active",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRules,
}

func init() {
	rulesCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

type ruleRow struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Severity    string   `json:"severity"`
	Active      bool     `json:"active"`
	OptIn       bool     `json:"opt_in,omitempty"`
	Meta        bool     `json:"meta,omitempty"`
	Deprecated  []string `json:"deprecated,omitempty"`
}

// runRules prints the registry as configured for path (default ".").
func runRules(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	target := "."
	if len(args) > 0 {
		target = args[0]
	}
	env, err := config.LoadEnv(nil)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(cmd, env, target)
	if err != nil {
		return err
	}
	linter, err := driver.New(driver.Options{Config: cfg})
	if err != nil {
		return err
	}

	rows := ruleRows(linter.Registry(), linter.Active())
	switch format {
	case "pretty":
		return renderRulesPretty(cmd.OutOrStdout(), rows)
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}
	return fmt.Errorf("unknown format: %s", format)
}

func ruleRows(reg *rule.Registry, active rule.Set) []ruleRow {
	title := cases.Title(language.English)
	rows := make([]ruleRow, 0, reg.Len())
	for _, id := range reg.IDs() {
		d, _ := reg.Descriptor(id)
		row := ruleRow{
			ID:          string(d.ID),
			Name:        d.Name,
			Description: d.Description,
			Severity:    title.String(strings.ToLower(d.Severity.String())),
			Active:      active.Has(d.ID),
			OptIn:       d.OptIn,
			Meta:        d.Meta,
		}
		for _, old := range d.Deprecated {
			row.Deprecated = append(row.Deprecated, string(old))
		}
		rows = append(rows, row)
	}
	return rows
}

func renderRulesPretty(out io.Writer, rows []ruleRow) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSEVERITY\tACTIVE\tKIND\tDESCRIPTION")
	for _, r := range rows {
		kind := "default"
		switch {
		case r.Meta && r.OptIn:
			kind = "meta, opt-in"
		case r.Meta:
			kind = "meta"
		case r.OptIn:
			kind = "opt-in"
		}
		desc := r.Description
		if len(r.Deprecated) > 0 {
			desc += " (alias: " + strings.Join(r.Deprecated, ", ") + ")"
		}
		active := "no"
		if r.Active {
			active = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", r.ID, r.Severity, active, kind, desc)
	}
	return tw.Flush()
}
