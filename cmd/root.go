package cmd

import (
	"fmt"
	"os"

	"github.com/markusressel/growctl/cmd/config"
	"github.com/markusressel/growctl/cmd/global"
	"github.com/markusressel/growctl/cmd/io"
	"github.com/markusressel/growctl/cmd/setpoint"
	"github.com/markusressel/growctl/internal"
	"github.com/markusressel/growctl/internal/configuration"
	"github.com/markusressel/growctl/internal/ui"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "growctl",
	Short: "A daemon to control the climate of a grow box.",
	Long: `growctl is a daemon that controls heater, fan, dehumidifier and light
of an enclosed growing space based on temperature and humidity sensors.`,
	// this is the default command to run when no subcommand is specified
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupUi()
	},
	Run: func(cmd *cobra.Command, args []string) {
		printHeader()
		global.LoadConfig()
		internal.RunDaemon()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&global.CfgFile, "config", "c", "", "config file (default is $HOME/growctl.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&global.NoColor, "no-color", "", false, "Disable all terminal output coloration")
	rootCmd.PersistentFlags().BoolVarP(&global.NoStyle, "no-style", "", false, "Disable all terminal output styling")
	rootCmd.PersistentFlags().BoolVarP(&global.Verbose, "verbose", "v", false, "More verbose output")

	rootCmd.AddCommand(config.Command)
	rootCmd.AddCommand(io.Command)
	rootCmd.AddCommand(setpoint.Command)
}

func setupUi() {
	ui.SetDebugEnabled(global.Verbose)

	if global.NoColor {
		pterm.DisableColor()
	}
	if global.NoStyle {
		pterm.DisableStyling()
	}
}

// Print a large text with the LetterStyle from the standard theme.
func printHeader() {
	err := pterm.DefaultBigText.WithLetters(
		pterm.NewLettersFromStringWithStyle("grow", pterm.NewStyle(pterm.FgLightGreen)),
		pterm.NewLettersFromStringWithStyle("ctl", pterm.NewStyle(pterm.FgWhite)),
	).Render()
	if err != nil {
		fmt.Println("growctl")
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.OnInitialize(func() {
		configuration.InitConfig(global.CfgFile)
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
