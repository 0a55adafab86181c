package main

import (
	"fmt"

	"github.com/lalith-99/kosboard/internal/service"
	"github.com/spf13/cobra"
)

var (
	flagSeedPrefix string
	flagSeedCount  int
	flagSeedPrice  string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create a block of sample rooms",
	Long:  "Create rooms A-101 to A-110 (by default). Room numbers that already exist are skipped.",
	RunE:  runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&flagSeedPrefix, "prefix", "A-", "Room number prefix")
	seedCmd.Flags().IntVar(&flagSeedCount, "count", 10, "Number of rooms")
	seedCmd.Flags().StringVar(&flagSeedPrice, "price", "1500000", "Monthly price of each room")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, _ []string) error {
	e, err := open(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	out := cmd.OutOrStdout()
	created := 0
	for i := 1; i <= flagSeedCount; i++ {
		number := fmt.Sprintf("%s%d", flagSeedPrefix, 100+i)
		_, err := e.svc.CreateRoom(cmd.Context(), service.Operator, service.RoomInput{
			RoomNumber: number,
			Price:      flagSeedPrice,
			Floor:      "1",
		})
		if service.KindOf(err) == service.KindConflict {
			fmt.Fprintf(out, "  %s exists, skipped\n", number)
			continue
		}
		if err != nil {
			return fmt.Errorf("create room %s: %w", number, err)
		}
		created++
	}
	fmt.Fprintf(out, "created %d room(s)\n", created)
	return nil
}
