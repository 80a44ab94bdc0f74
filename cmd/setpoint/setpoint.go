package setpoint

import (
	"github.com/markusressel/growctl/cmd/global"
	"github.com/markusressel/growctl/internal/configuration"
	"github.com/markusressel/growctl/internal/store"
	"github.com/markusressel/growctl/internal/ui"
	"github.com/spf13/cobra"
)

var Command = &cobra.Command{
	Use:              "setpoint",
	Short:            "Setpoint related commands",
	Long:             ``,
	TraverseChildren: true,
}

func openStore() store.Store {
	global.LoadConfig()
	s, err := store.NewStore(configuration.CurrentConfig.Store)
	if err != nil {
		ui.Fatal("Unable to open state store: %v", err)
	}
	return s
}
