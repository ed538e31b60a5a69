package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/qraqras/leukocyte-sub000/internal/cli/output"
	"github.com/qraqras/leukocyte-sub000/internal/engine"
	"github.com/qraqras/leukocyte-sub000/internal/sidecar"
	"github.com/spf13/cobra"
)

// Health check statuses.
const (
	statusPass  = "pass"
	statusWarn  = "warn"
	statusError = "error"
	statusSkip  = "skip"
)

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor [directory]",
		Short: "Check the project's RuboCop configuration for problems",
		Long: `Resolve every RuboCop configuration file in the project and report:
- files whose inherit_from chain cannot be resolved
- rule names that no registered rule matches
- rule parameters that the rule does not accept
- .leukocyte snapshots that are older than their sources

The report ends with a health score (0-100) and recommendations.`,
		Example: `  leuko doctor
  leuko doctor path/to/project -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runDoctor,
	}
}

// DoctorOutput is the structured output of doctor.
type DoctorOutput struct {
	ProjectDir      string        `json:"project_dir" yaml:"project_dir"`
	ConfigFiles     int           `json:"config_files" yaml:"config_files"`
	HealthChecks    []HealthCheck `json:"health_checks" yaml:"health_checks"`
	Score           int           `json:"score" yaml:"score"`
	Recommendations []string      `json:"recommendations" yaml:"recommendations"`
	IssueCount      int           `json:"issue_count" yaml:"issue_count"`
}

// HealthCheck is the result of one check.
type HealthCheck struct {
	ID         string   `json:"id" yaml:"id"`
	Name       string   `json:"name" yaml:"name"`
	Group      string   `json:"group" yaml:"group"`
	Status     string   `json:"status" yaml:"status"`
	IssueCount int      `json:"issue_count" yaml:"issue_count"`
	Details    []string `json:"details,omitempty" yaml:"details,omitempty"`
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	dir := cmdCtx.Cfg.ProjectDir
	if len(args) == 1 {
		dir = args[0]
	}
	if dir == "" {
		dir = "."
	}
	dir, err = filepath.Abs(dir)
	if err != nil {
		return err
	}

	sources, err := sidecar.FindConfigFiles(dir)
	if err != nil {
		return err
	}

	out := diagnose(cmdCtx.Engine, dir, sources)
	if cmdCtx.Renderer.Structured() {
		return cmdCtx.Renderer.Structure(out)
	}
	if cmdCtx.Renderer.EffectiveMode() == output.ModeMarkdown {
		return renderDoctorMarkdown(cmdCtx.Renderer, out)
	}
	return renderDoctorText(cmdCtx.Renderer, out)
}

// diagnose runs every check against the configuration files in dir.
func diagnose(eng *engine.Engine, dir string, sources []string) *DoctorOutput {
	resolve := HealthCheck{ID: "CF01", Name: "Configuration resolves", Group: "configuration"}
	rules := HealthCheck{ID: "CF02", Name: "Rule names are known", Group: "configuration"}
	keys := HealthCheck{ID: "CF03", Name: "Rule parameters are known", Group: "configuration"}

	seenRules := make(map[string]bool)
	seenKeys := make(map[string]bool)
	for _, src := range sources {
		n, err := eng.Resolve(filepath.Dir(src))
		if err != nil {
			resolve.Details = append(resolve.Details, err.Error())
			continue
		}
		for _, name := range eng.UnknownRules(n) {
			if !seenRules[name] {
				seenRules[name] = true
				rules.Details = append(rules.Details, fmt.Sprintf("%s (%s)", name, n.Nearest().Path))
			}
		}
		for _, key := range eng.UnknownKeys(n) {
			if !seenKeys[key] {
				seenKeys[key] = true
				keys.Details = append(keys.Details, fmt.Sprintf("%s (%s)", key, n.Nearest().Path))
			}
		}
		n.Release()
	}
	finish(&resolve, statusError)
	finish(&rules, statusWarn)
	finish(&keys, statusWarn)

	checks := []HealthCheck{resolve, rules, keys, checkSidecar(dir, sources)}
	sort.SliceStable(checks, func(i, j int) bool {
		if checks[i].Group != checks[j].Group {
			return checks[i].Group < checks[j].Group
		}
		return checks[i].ID < checks[j].ID
	})

	out := &DoctorOutput{
		ProjectDir:      dir,
		ConfigFiles:     len(sources),
		HealthChecks:    checks,
		Score:           calculateHealthScore(checks, len(sources)),
		Recommendations: generateRecommendations(checks),
	}
	for _, c := range checks {
		out.IssueCount += c.IssueCount
	}
	return out
}

func finish(c *HealthCheck, failing string) {
	c.IssueCount = len(c.Details)
	c.Status = statusPass
	if c.IssueCount > 0 {
		c.Status = failing
	}
}

// checkSidecar compares .leukocyte/index.json against the configuration
// files on disk. It is skipped when the project was never initialized.
func checkSidecar(dir string, sources []string) HealthCheck {
	c := HealthCheck{ID: "SC01", Name: "Sidecar snapshots are current", Group: "sidecar"}
	if !sidecar.Initialized(dir) {
		c.Status = statusSkip
		return c
	}

	ix, err := sidecar.LoadIndex(sidecar.IndexPath(dir), nil)
	if err != nil {
		c.Details = append(c.Details, err.Error())
		finish(&c, statusWarn)
		return c
	}

	indexed := make(map[string]bool, ix.Len())
	for _, e := range ix.Entries() {
		indexed[e.Src] = true
		if stale, reason := snapshotStale(e.IndexEntry); stale {
			c.Details = append(c.Details, fmt.Sprintf("%s: %s", e.Src, reason))
		}
	}
	for _, src := range sources {
		if !indexed[src] {
			c.Details = append(c.Details, src+": not in index")
		}
	}
	finish(&c, statusWarn)
	return c
}

func snapshotStale(e sidecar.IndexEntry) (bool, string) {
	info, err := os.Stat(e.Src)
	if err != nil {
		return true, "source removed"
	}
	ts, err := time.Parse(time.RFC3339, e.Timestamp)
	if err != nil {
		return true, "snapshot has no timestamp"
	}
	// timestamps are written with second precision
	if info.ModTime().Truncate(time.Second).After(ts) {
		return true, "modified after last sync"
	}
	return false, ""
}

// calculateHealthScore computes a score from 0-100. Errors cost twice as
// much as warnings, and each issue weighs less in larger projects.
func calculateHealthScore(checks []HealthCheck, configCount int) int {
	score := 100.0

	penalty := 10.0
	if configCount > 5 {
		penalty = 5.0
	}
	if configCount > 20 {
		penalty = 2.0
	}

	for _, check := range checks {
		switch check.Status {
		case statusError:
			score -= float64(check.IssueCount) * penalty * 2
		case statusWarn:
			score -= float64(check.IssueCount) * penalty
		}
	}

	return int(max(0, min(100, score)))
}

func generateRecommendations(checks []HealthCheck) []string {
	var recs []string
	for _, check := range checks {
		if check.IssueCount == 0 {
			continue
		}
		if rec := recommendation(check.ID); rec != "" {
			recs = append(recs, rec)
		}
	}
	return recs
}

func recommendation(id string) string {
	switch id {
	case "CF01":
		return "Fix inherit_from entries that point at missing files or form a cycle"
	case "CF02":
		return "Remove or rename rules that are misspelled or belong to an unloaded plugin"
	case "CF03":
		return "Check parameter names against 'leuko rules <name>'"
	case "SC01":
		return "Run 'leuko sync' to refresh the .leukocyte snapshots"
	default:
		return ""
	}
}

func statusIcon(styles *output.Styles, status string) string {
	switch status {
	case statusWarn:
		return styles.Warning.Render("!")
	case statusError:
		return styles.Error.Render("✗")
	case statusSkip:
		return styles.Muted.Render("-")
	default:
		return styles.Success.Render("✓")
	}
}

func renderDoctorText(r *output.Renderer, out *DoctorOutput) error {
	styles := r.Styles()

	r.Println(styles.Header1.Render("Configuration Health Report"))
	r.Println(styles.Muted.Render(strings.Repeat("=", 55)))
	r.Printf("   Project: %s\n", styles.Path.Render(out.ProjectDir))
	r.Printf("   Configuration files: %d\n", out.ConfigFiles)
	r.Println("")

	currentGroup := ""
	titleCaser := cases.Title(language.English)
	for _, check := range out.HealthChecks {
		if check.Group != currentGroup {
			currentGroup = check.Group
			r.Println(styles.Bold.Render("   " + titleCaser.String(currentGroup)))
			r.Println(styles.Muted.Render("   " + strings.Repeat("-", 40)))
		}

		line := fmt.Sprintf("   %s %s: %s", statusIcon(styles, check.Status), check.ID, check.Name)
		if check.IssueCount > 0 {
			line += fmt.Sprintf(" (%d issues)", check.IssueCount)
		}
		r.Println(line)

		for i, detail := range check.Details {
			if i >= 3 {
				r.Println(styles.Muted.Render(fmt.Sprintf("       ... and %d more", len(check.Details)-3)))
				break
			}
			r.Println(styles.Muted.Render("       - " + detail))
		}
	}
	r.Println("")

	scoreStyle := styles.Success
	if out.Score < 70 {
		scoreStyle = styles.Warning
	}
	if out.Score < 50 {
		scoreStyle = styles.Error
	}
	r.Printf("   Health Score: %s\n", scoreStyle.Render(fmt.Sprintf("%d/100", out.Score)))

	if len(out.Recommendations) > 0 {
		r.Println("")
		r.Println(styles.Header2.Render("Recommendations"))
		for i, rec := range out.Recommendations {
			r.Printf("   %d. %s\n", i+1, rec)
		}
	}
	return nil
}

func renderDoctorMarkdown(r *output.Renderer, out *DoctorOutput) error {
	r.Println("# Configuration Health Report")
	r.Println("")
	r.Printf("- **Project**: `%s`\n", out.ProjectDir)
	r.Printf("- **Configuration files**: %d\n", out.ConfigFiles)
	r.Println("")

	currentGroup := ""
	titleCaser := cases.Title(language.English)
	for _, check := range out.HealthChecks {
		if check.Group != currentGroup {
			currentGroup = check.Group
			r.Println("## " + titleCaser.String(currentGroup))
			r.Println("")
		}

		r.Printf("- **[%s]** %s: %s", strings.ToUpper(check.Status), check.ID, check.Name)
		if check.IssueCount > 0 {
			r.Printf(" (%d issues)", check.IssueCount)
		}
		r.Println("")
		for _, detail := range check.Details {
			r.Printf("  - %s\n", detail)
		}
	}
	r.Println("")

	r.Println("## Health Score")
	r.Println("")
	r.Printf("**%d/100**\n", out.Score)

	if len(out.Recommendations) > 0 {
		r.Println("")
		r.Println("## Recommendations")
		r.Println("")
		for i, rec := range out.Recommendations {
			r.Printf("%d. %s\n", i+1, rec)
		}
	}
	return nil
}
