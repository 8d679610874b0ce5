package cmd

import (
	"fmt"
	"github.com/ValentinKolb/cqlbench/cmd/bench"
	"github.com/ValentinKolb/cqlbench/cmd/seed"
	"github.com/ValentinKolb/cqlbench/cmd/util"
	"github.com/spf13/cobra"
	"os"
)

const (
	Version = "0.1.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "cqlbench",
		Short: "read benchmark for CQL clusters",
		Long: fmt.Sprintf(`cqlbench (v%s)

A micro-benchmark that drives sustained concurrent read load against a
Cassandra or ScyllaDB cluster and compares client-side routing policies.`, Version),
		PersistentPreRunE: initLogging,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of cqlbench",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("cqlbench v%s\n", Version)
		},
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add Commands
	RootCmd.AddCommand(bench.BenchCmd)
	RootCmd.AddCommand(seed.SeedCmd)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "log-level"
	RootCmd.PersistentFlags().String(key, "info", util.WrapString("Level at which logs will be output (debug, info, warn, error)"))
}

// initLogging binds the flags of the executed command and configures all loggers
func initLogging(cmd *cobra.Command, _ []string) error {
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}
	return util.InitLogging()
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
