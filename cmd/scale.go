package cmd

import (
	"fmt"
	"strconv"

	"github.com/guptarohit/asciigraph"
	"github.com/markusressel/growctl/cmd/global"
	"github.com/markusressel/growctl/internal/util"
	"github.com/spf13/cobra"
)

var (
	scaleMin  float64
	scaleMax  float64
	scalePlot bool
)

var scaleCmd = &cobra.Command{
	Use:   "scale",
	Short: "Preview the mapping between a raw value range and percent",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		scaler := util.NewScaler(scaleMin, scaleMax)
		if scaler.IsDegenerate() {
			return fmt.Errorf("min and max must not be equal (%v)", scaleMin)
		}

		var rows [][]string
		for percent := 0.0; percent <= 100; percent += 10 {
			rows = append(rows, []string{
				strconv.FormatFloat(percent, 'f', 0, 64),
				strconv.FormatFloat(scaler.Unscale(percent), 'f', 2, 64),
			})
		}
		global.PrintTable([]string{"Percent", "Raw"}, rows)

		if scalePlot {
			values := make([]float64, 0, 101)
			for percent := 0; percent <= 100; percent++ {
				values = append(values, scaler.Unscale(float64(percent)))
			}
			graph := asciigraph.Plot(values, asciigraph.Height(15), asciigraph.Width(100), asciigraph.Caption("Raw / Percent"))
			fmt.Println(graph)
		}
		return nil
	},
}

func init() {
	scaleCmd.Flags().Float64VarP(&scaleMin, "min", "", 0, "Raw value at 0%")
	scaleCmd.Flags().Float64VarP(&scaleMax, "max", "", 255, "Raw value at 100%")
	scaleCmd.Flags().BoolVarP(&scalePlot, "plot", "p", false, "Plot the mapping")
	rootCmd.AddCommand(scaleCmd)
}
