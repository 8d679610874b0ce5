package seed

import (
	"fmt"
	"github.com/ValentinKolb/cqlbench/cmd/util"
	"github.com/ValentinKolb/cqlbench/lib/common"
	"github.com/ValentinKolb/cqlbench/lib/seed"
	"github.com/ValentinKolb/cqlbench/lib/session/cql"
	"github.com/ValentinKolb/cqlbench/lib/workload"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"os"
	"syscall"
)

var (
	SeedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Create the benchmark table and write the dataset",
		Long: `Create the keyspace (SimpleStrategy) and the table read by 'cqlbench bench'
and insert the dataset row by row. The schema is created without IF NOT EXISTS,
so seeding an already seeded cluster fails.`,
		PreRunE: processConfig,
		RunE:    run,
	}

	clusterConfig *common.ClusterConfig
	seedConfig    seed.Config
)

func init() {
	util.SetupClusterFlags(SeedCmd)

	defaults := seed.DefaultConfig()

	// add flags
	key := "replication-factor"
	SeedCmd.Flags().Int(key, defaults.Schema.ReplicationFactor, util.WrapString("Replication factor of the keyspace"))

	key = "partitions"
	SeedCmd.Flags().Int(key, defaults.Partitions, util.WrapString("Number of partitions (pk 0..n-1)"))

	key = "rows"
	SeedCmd.Flags().Int(key, defaults.RowsPerPartition, util.WrapString("Rows per partition (v 1..n)"))
}

// processConfig reads the configuration from the command line flags and environment variables
func processConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	var err error
	// the seeder keeps the driver's default routing
	if clusterConfig, err = util.GetClusterConfig(""); err != nil {
		return err
	}

	seedConfig = seed.Config{
		Schema:           util.GetSchemaConfig(),
		Partitions:       viper.GetInt("partitions"),
		RowsPerPartition: viper.GetInt("rows"),
	}
	seedConfig.Schema.ReplicationFactor = viper.GetInt("replication-factor")

	if seedConfig.Schema.ReplicationFactor < 1 {
		return fmt.Errorf("replication factor must be at least 1, got %d", seedConfig.Schema.ReplicationFactor)
	}
	if seedConfig.Partitions < 0 || seedConfig.RowsPerPartition < 0 {
		return fmt.Errorf("partitions and rows must not be negative")
	}

	return nil
}

func run(cmd *cobra.Command, _ []string) error {
	cmd.SilenceUsage = true

	// Print configuration
	fmt.Println("Configuration:")
	fmt.Print(clusterConfig.String())
	fmt.Print(seedConfig.String())
	fmt.Println()

	// an interrupt aborts the seeding between two statements
	shutdown := workload.NewShutdownSignal(cmd.Context())
	stopSignals := shutdown.NotifyOnSignals(os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	sess, err := cql.Connect(*clusterConfig)
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := seed.Seed(shutdown.Context(), sess, seedConfig); err != nil {
		return err
	}

	fmt.Printf("\n%d rows written to %s\n", seedConfig.Rows(), seedConfig.Schema.QualifiedTable())
	return nil
}
