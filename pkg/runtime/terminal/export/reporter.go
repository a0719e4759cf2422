package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/de-tools/pricelist-atlas/pkg/models/api"
)

type TableConfig struct {
	UsageTypeWidth   int
	RegionWidth      int
	LocationWidth    int
	DescriptionWidth int
	PriceWidth       int
	UnitWidth        int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		UsageTypeWidth:   28,
		RegionWidth:      24,
		LocationWidth:    30,
		DescriptionWidth: 40,
		PriceWidth:       21,
		UnitWidth:        12,
	}
}

type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

// truncate keeps cells inside their column; long values end in "...".
func truncate(value string, width int) string {
	if len([]rune(value)) <= width {
		return value
	}
	if width <= 3 {
		return string([]rune(value)[:width])
	}
	return string([]rune(value)[:width-3]) + "..."
}

func (c *Reporter) funcMap() template.FuncMap {
	cfg := c.config
	return template.FuncMap{
		"formatRow": func(usageType, regions, locations, desc, price, unit string) string {
			return fmt.Sprintf("| %-*s | %-*s | %-*s | %-*s | %-*s | %-*s |",
				cfg.UsageTypeWidth, truncate(usageType, cfg.UsageTypeWidth),
				cfg.RegionWidth, truncate(regions, cfg.RegionWidth),
				cfg.LocationWidth, truncate(locations, cfg.LocationWidth),
				cfg.DescriptionWidth, truncate(desc, cfg.DescriptionWidth),
				cfg.PriceWidth, truncate(price, cfg.PriceWidth),
				cfg.UnitWidth, truncate(unit, cfg.UnitWidth))
		},
		"separator": func() string {
			return fmt.Sprintf("+%s+%s+%s+%s+%s+%s+",
				strings.Repeat("-", cfg.UsageTypeWidth+2),
				strings.Repeat("-", cfg.RegionWidth+2),
				strings.Repeat("-", cfg.LocationWidth+2),
				strings.Repeat("-", cfg.DescriptionWidth+2),
				strings.Repeat("-", cfg.PriceWidth+2),
				strings.Repeat("-", cfg.UnitWidth+2))
		},
	}
}

const tableTemplate = `
Pricing Table
Version: {{.VersionBegin}} to {{.VersionEnd}}
{{if .Message}}
{{.Message}}
{{else}}
{{separator}}
{{formatRow "SKU/Usage Type" "Region(s)" "Location(s)" "Description" "Price Range (USD)" "Unit"}}
{{separator}}
{{range .Rows}}{{formatRow .UsageType .RegionCodes .Locations .Description .PriceRange .Unit}}
{{end}}{{separator}}
{{end}}`

func (c *Reporter) Table(table *api.PricingTable) error {
	t, err := template.New("table").Funcs(c.funcMap()).Parse(tableTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	return t.Execute(c.writer, table)
}

const optionsTemplate = `{{range .}}{{.Label}}{{if ne .Label .Value}} ({{.Value}}){{end}}
{{end}}`

func (c *Reporter) Options(options []api.Option) error {
	t, err := template.New("options").Parse(optionsTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	return t.Execute(c.writer, options)
}

const discountsTemplate = `
=== Discounts ===
No discounts or reserved pricing available for {{.}}.
`

func (c *Reporter) Discounts(serviceName string) error {
	if serviceName == "" {
		serviceName = "this service"
	}
	t, err := template.New("discounts").Parse(discountsTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	return t.Execute(c.writer, serviceName)
}

// SyncSummary is what the sync command reports.
type SyncSummary struct {
	RunID   string
	Files   []string
	Skipped []string
}

const syncTemplate = `Sync {{.RunID}} completed
{{range .Files}}  stored  {{.}}
{{end}}{{range .Skipped}}  skipped {{.}} (no price list)
{{end}}`

func (c *Reporter) Sync(summary SyncSummary) error {
	t, err := template.New("sync").Parse(syncTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}
	return t.Execute(c.writer, summary)
}

func (c *Reporter) Message(text string) error {
	_, err := fmt.Fprintln(c.writer, text)
	return err
}
