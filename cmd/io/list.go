package io

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/markusressel/growctl/cmd/global"
	"github.com/markusressel/growctl/internal/configuration"
	"github.com/markusressel/growctl/internal/points"
	"github.com/markusressel/growctl/internal/store"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the current value of all configured inputs and outputs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := openStore()
		defer s.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		definitions := points.NewDefinitions(configuration.CurrentConfig)
		var rows [][]string
		for _, point := range definitions.Snapshot() {
			rows = append(rows, pointRow(ctx, s, point))
		}

		global.PrintTable([]string{"Role", "Kind", "ID", "Write ID", "Value", "Updated"}, rows)
		return nil
	},
}

func pointRow(ctx context.Context, s store.Store, point points.PointState) []string {
	value := "-"
	updated := "-"
	state, err := s.Read(ctx, point.Id)
	if errors.Is(err, store.ErrNotFound) {
		value = "not found"
	} else if err != nil {
		value = err.Error()
	} else {
		value = fmt.Sprintf("%v", state.Value)
		if !state.Timestamp.IsZero() {
			updated = state.Timestamp.Format(time.DateTime)
		}
	}
	return []string{string(point.Role), string(point.Kind), point.Id, point.WriteId, value, updated}
}

func init() {
	Command.AddCommand(listCmd)
}
