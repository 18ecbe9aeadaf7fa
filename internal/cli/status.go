package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewStatusCmd создаёт команду просмотра состояния запущенной фермы.
func NewStatusCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show worker states of a running farm",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			status, err := client.Status(cmd.Context())
			if err != nil {
				return err
			}

			if out.JSONMode() {
				out.JSON(status)
				return nil
			}

			headers := []string{"SESSION", "STATE", "CYCLES", "BALANCE", "TASKS", "REWARDS", "NEXT_CYCLE", "LAST_ERROR"}
			rows := make([][]string, len(status.Workers))
			for i, w := range status.Workers {
				rows[i] = []string{
					w.Session,
					string(w.State),
					strconv.Itoa(w.Cycles),
					formatInt64(w.Balance),
					strconv.Itoa(w.TasksVerified),
					strconv.Itoa(w.RewardsClaimed),
					formatTime(w.NextCycleAt),
					dash(w.LastError),
				}
			}
			out.Table(headers, rows)

			s := status.Summary
			out.Success(fmt.Sprintf("%d workers: %d active, %d terminated, %d stopped | balance %d",
				s.Workers, s.Active, s.Terminated, s.Stopped, s.TotalBalance))
			return nil
		},
	}
}
