package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/qraqras/leukocyte-sub000/pkg/core"
	"github.com/qraqras/leukocyte-sub000/pkg/lint/rules"
)

// generateRuleDocs writes rules.md, one section per category.
func generateRuleDocs(outDir string) error {
	log.Printf("Generating rule docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	reg := rules.NewRegistry()
	w := NewMarkdownWriter()
	w.Frontmatter("Rules", "Built-in rules known to leuko")
	w.GeneratedMarker()

	w.Header(1, "Rules")
	w.Paragraph(fmt.Sprintf("leuko knows **%d rules** in %d categories. "+
		"Each rule is configured under its `Category/Name` key in `.rubocop.yml`.",
		reg.Len(), len(reg.Categories())))
	w.CodeBlock("yaml", `Layout/LineLength:
  Enabled: true
  Severity: warning
  Max: 120
  Exclude:
    - db/schema.rb`)

	w.Header(2, "Severity Levels")
	var sevRows [][]string
	for _, s := range core.AllSeverities() {
		sevRows = append(sevRows, []string{InlineCode(s.String()), InlineCode(s.Code())})
	}
	w.Table([]string{"Severity", "Code"}, sevRows)

	for _, category := range reg.Categories() {
		w.Header(2, category)
		for _, d := range reg.InCategory(category) {
			writeRuleDoc(w, d.Info())
		}
	}

	filename := filepath.Join(outDir, "rules.md")
	if err := os.WriteFile(filename, w.Bytes(), 0600); err != nil {
		return err
	}
	log.Printf("  Generated rules.md")
	return nil
}

// writeRuleDoc writes detailed documentation for a single rule.
func writeRuleDoc(w *MarkdownWriter, info core.RuleInfo) {
	w.Header(3, info.Name)

	enabled := "yes"
	if !info.DefaultEnabled {
		enabled = "no"
	}
	w.BulletList([]string{
		Bold("Severity:") + " " + InlineCode(info.DefaultSeverity.String()),
		Bold("Enabled by default:") + " " + enabled,
		Bold("Inspects:") + " " + strings.Join(info.NodeKinds, ", "),
	})

	w.Paragraph(cleanDescription(info.Description))

	if len(info.ConfigKeys) > 0 {
		w.Header(4, "Configuration")
		keys := make([]string, len(info.ConfigKeys))
		for i, k := range info.ConfigKeys {
			keys[i] = InlineCode(k)
		}
		w.Paragraph("This rule accepts the following options: " + strings.Join(keys, ", "))
	}

	w.Line("---")
	w.Newline()
}
