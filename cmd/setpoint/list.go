package setpoint

import (
	"context"
	"strconv"
	"time"

	"github.com/markusressel/growctl/cmd/global"
	"github.com/markusressel/growctl/internal/configuration"
	"github.com/markusressel/growctl/internal/setpoints"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print all setpoints as currently stored",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := openStore()
		defer s.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		table := setpoints.NewSetpoints(s, configuration.CurrentConfig.Namespace)
		table.Refresh(ctx)

		values := table.Map()
		var rows [][]string
		for _, name := range table.Names() {
			rows = append(rows, []string{name, strconv.FormatFloat(values[name], 'f', -1, 64)})
		}
		global.PrintTable([]string{"Name", "Value"}, rows)
		return nil
	},
}

func init() {
	Command.AddCommand(listCmd)
}
