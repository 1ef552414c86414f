package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/asterix-health/opsboard/cmd/opsctl/cli"
)

var jobsRedisAddr string

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Inspect and trigger background jobs",
}

var jobsTriggerCmd = &cobra.Command{
	Use:   "trigger <warmup|refresh>",
	Short: "Enqueue a job with its default payload",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := cli.NewJobsCLI(redisAddr())
		defer c.Close()
		info, err := c.Trigger(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "enqueued %s as %s on %s\n", info.Type, info.ID, info.Queue)
		return nil
	},
}

var jobsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show queue depth for the default queue",
	RunE: func(cmd *cobra.Command, _ []string) error {
		c := cli.NewJobsCLI(redisAddr())
		defer c.Close()
		stats, err := c.InspectQueue(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "queue=%s pending=%d active=%d scheduled=%d retry=%d\n",
			stats.Queue, stats.Pending, stats.Active, stats.Scheduled, stats.Retry)
		return nil
	},
}

func init() {
	jobsCmd.PersistentFlags().StringVar(&jobsRedisAddr, "redis-addr", "", "Redis address (defaults to REDIS_ADDR)")
	jobsCmd.AddCommand(jobsTriggerCmd, jobsStatsCmd)
	rootCmd.AddCommand(jobsCmd)
}

func redisAddr() string {
	if jobsRedisAddr != "" {
		return jobsRedisAddr
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		return addr
	}
	return "127.0.0.1:6379"
}
