package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	infra "github.com/missionpuck/logprinter/internal/infrastructure/printing"
)

var templateName string

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Work with form templates",
}

var templateCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Load a form template and report its header fields and row capacity",
	Example: `  logprinter template check
  logprinter template check --template forms/ics109.yaml`,
	Args: cobra.NoArgs,
	RunE: runTemplateCheck,
}

func init() {
	templateCheckCmd.Flags().StringVar(&templateName, "template", "", "template name or .yaml path (default: template.name)")
	templateCmd.AddCommand(templateCheckCmd)
	rootCmd.AddCommand(templateCmd)
}

func runTemplateCheck(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	name := templateName
	if name == "" {
		name = cfg.Template.Name
	}

	store := infra.NewTemplateStore(&infra.TemplateStoreConfig{
		ExternalDir: cfg.Template.ExternalDir,
		Logger:      zap.NewNop(),
	})
	tpl, err := store.Get(name)
	if err != nil {
		return err
	}
	return writeTemplateReport(cmd.OutOrStdout(), tpl)
}

// rowCapacity counts row slots from 1 until the first gap
func rowCapacity(tpl *infra.FormTemplate) int {
	n := 0
	for tpl.HasRowSlot(n + 1) {
		n++
	}
	return n
}

func writeTemplateReport(out io.Writer, tpl *infra.FormTemplate) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "TEMPLATE\t%s\n", tpl.Name)
	fmt.Fprintf(w, "PAGE\t%.0f x %.0f pt\n", tpl.Page.Width, tpl.Page.Height)
	if tpl.Background != "" {
		fmt.Fprintf(w, "BACKGROUND\t%s\n", tpl.Background)
	}
	fmt.Fprintf(w, "FONT\t%s %.1f\n", tpl.Font.Family, tpl.Font.Size)
	fmt.Fprintf(w, "CAPACITY\t%d rows per page\n", rowCapacity(tpl))
	if f, ok := tpl.SubjectField(); ok {
		fmt.Fprintf(w, "FIELD WIDTH\t%.1f pt\n", f.Rect.W)
	}
	fmt.Fprintln(w)

	h := tpl.Header
	fmt.Fprintln(w, "ROLE\tFIELD")
	for _, r := range [][2]string{
		{"incident_name", h.IncidentName},
		{"mission_number", h.MissionNumber},
		{"operators", h.Operators},
		{"date_from", h.DateFrom},
		{"date_to", h.DateTo},
		{"page_index", h.PageIndex},
		{"page_count", h.PageCount},
		{"generated", h.Generated},
		{"prepared_by", h.PreparedBy},
	} {
		fmt.Fprintf(w, "%s\t%s\n", r[0], r[1])
	}
	return w.Flush()
}
