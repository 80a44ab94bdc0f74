package global

import (
	"bytes"

	"github.com/markusressel/growctl/internal/configuration"
	"github.com/markusressel/growctl/internal/ui"
	"github.com/mgutz/ansi"
	"github.com/tomlazar/table"
)

var (
	CfgFile string
	NoColor bool
	NoStyle bool
	Verbose bool
)

// LoadConfig reads and validates the configuration file, exiting on failure
func LoadConfig() {
	configPath := configuration.DetectAndReadConfigFile()
	ui.Info("Using configuration file at: %s", configPath)
	configuration.LoadConfig()

	err := configuration.Validate()
	if err != nil {
		ui.Fatal("Config Validation Error: %v", err)
	}
}

func PrintTable(headers []string, rows [][]string) {
	text, err := RenderTable(headers, rows)
	if err != nil {
		ui.Fatal("Unable to print table: %v", err)
	}
	ui.Printfln("%s", text)
}

// RenderTable formats the given rows as a table, honoring the color flag
func RenderTable(headers []string, rows [][]string) (string, error) {
	tab := table.Table{
		Headers: headers,
		Rows:    rows,
	}
	var buf bytes.Buffer
	err := tab.WriteTable(&buf, &table.Config{
		ShowIndex:       false,
		Color:           !NoColor,
		AlternateColors: true,
		TitleColorCode:  ansi.ColorCode("white+buf"),
		AltColorCodes: []string{
			ansi.ColorCode("white"),
			ansi.ColorCode("white:236"),
		},
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
