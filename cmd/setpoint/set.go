package setpoint

import (
	"context"
	"time"

	"github.com/markusressel/growctl/internal/configuration"
	"github.com/markusressel/growctl/internal/setpoints"
	"github.com/markusressel/growctl/internal/ui"
	"github.com/spf13/cobra"
)

var (
	setpointName  string
	setpointValue float64
)

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Change the value of a single setpoint",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := openStore()
		defer s.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		table := setpoints.NewSetpoints(s, configuration.CurrentConfig.Namespace)
		err := table.Set(ctx, setpointName, setpointValue)
		if err != nil {
			return err
		}
		ui.Success("Setpoint %s set to %v", setpointName, setpointValue)
		return nil
	},
}

func init() {
	setCmd.Flags().StringVarP(&setpointName, "name", "n", "", "Name of the setpoint, e.g. LightOn.DesiredTemperature")
	setCmd.Flags().Float64VarP(&setpointValue, "value", "", 0, "New value")
	_ = setCmd.MarkFlagRequired("name")
	_ = setCmd.MarkFlagRequired("value")
	Command.AddCommand(setCmd)
}
