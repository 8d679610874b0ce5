package bench

import (
	"context"
	"errors"
	"fmt"
	"github.com/ValentinKolb/cqlbench/cmd/util"
	"github.com/ValentinKolb/cqlbench/lib/common"
	"github.com/ValentinKolb/cqlbench/lib/session/cql"
	"github.com/ValentinKolb/cqlbench/lib/stats"
	"github.com/ValentinKolb/cqlbench/lib/workload"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"os"
	"strconv"
	"strings"
	"syscall"
	"time"
)

var Logger = logger.GetLogger("cmd")

var (
	BenchCmd = &cobra.Command{
		Use:   "bench",
		Short: "Run the read workload against the cluster",
		Long: `Run the read workload against the cluster until interrupted (SIGINT / SIGTERM).
Every virtual client repeatedly queries all partition keys concurrently and waits
for every answer before it starts the next round. The routing policy is selected
with --workload. The table has to be created with 'cqlbench seed' first.`,
		PreRunE: processConfig,
		RunE:    run,
	}

	clusterConfig   *common.ClusterConfig
	schemaConfig    common.SchemaConfig
	poolConfig      workload.PoolConfig
	reportInterval  time.Duration
	metricsEndpoint string
	csvPath         string
)

func init() {
	util.SetupClusterFlags(BenchCmd)

	defaults := workload.DefaultPoolConfig()

	// add flags
	key := "workload"
	BenchCmd.Flags().StringP(key, "w", "", util.WrapString(fmt.Sprintf("Routing policy to benchmark (required, one of: %s)", strings.Join(cql.Policies, ", "))))

	key = "concurrency"
	BenchCmd.Flags().IntP(key, "c", defaults.Concurrency, util.WrapString("Number of virtual clients"))

	key = "pks"
	pks := make([]string, len(defaults.PartitionKeys))
	for i, k := range defaults.PartitionKeys {
		pks[i] = strconv.Itoa(k)
	}
	BenchCmd.Flags().StringSliceP(key, "p", pks, util.WrapString(fmt.Sprintf("The %d partition keys queried by every round", util.PartitionKeyCount)))

	key = "threshold"
	BenchCmd.Flags().Int(key, defaults.Threshold, util.WrapString("Lower bound (exclusive) for the clustering column of every read"))

	key = "start-delay"
	BenchCmd.Flags().Duration(key, defaults.StartDelay, util.WrapString("Delay between the start of two virtual clients (e.g. 100ms)"))

	key = "report-interval"
	BenchCmd.Flags().Duration(key, 10*time.Second, util.WrapString("Interval of the periodic throughput report (0 disables it)"))

	key = "metrics-endpoint"
	BenchCmd.Flags().String(key, "", util.WrapString("Optional address to serve Prometheus metrics on (e.g. localhost:9100)"))

	key = "csv"
	BenchCmd.Flags().String(key, "", util.WrapString("Optional path to save the benchmark summary as CSV"))
}

// processConfig reads the configuration from the command line flags and
// environment variables. Every error is reported before a client is started.
func processConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	policy := strings.ToLower(strings.TrimSpace(viper.GetString("workload")))
	if policy == "" {
		return fmt.Errorf("--workload is required (one of: %s)", strings.Join(cql.Policies, ", "))
	}
	if _, err := cql.NewHostSelectionPolicy(policy); err != nil {
		return err
	}

	var err error
	if clusterConfig, err = util.GetClusterConfig(policy); err != nil {
		return err
	}
	schemaConfig = util.GetSchemaConfig()

	keys, err := util.ParsePartitionKeys(viper.GetStringSlice("pks"))
	if err != nil {
		return err
	}

	poolConfig = workload.PoolConfig{
		Concurrency:   viper.GetInt("concurrency"),
		PartitionKeys: keys,
		Threshold:     viper.GetInt("threshold"),
		StartDelay:    viper.GetDuration("start-delay"),
	}
	if err := poolConfig.Validate(); err != nil {
		return err
	}

	reportInterval = viper.GetDuration("report-interval")
	metricsEndpoint = viper.GetString("metrics-endpoint")
	csvPath = viper.GetString("csv")

	return nil
}

func run(cmd *cobra.Command, _ []string) error {
	// configuration is valid, runtime errors should not print the usage
	cmd.SilenceUsage = true

	// Print configuration
	fmt.Println("Configuration:")
	fmt.Print(clusterConfig.String())
	fmt.Print(schemaConfig.String())
	fmt.Print(poolConfig.String())
	fmt.Println()

	shutdown := workload.NewShutdownSignal(cmd.Context())
	stopSignals := shutdown.NotifyOnSignals(os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	sess, err := cql.Connect(*clusterConfig)
	if err != nil {
		return err
	}
	defer sess.Close()

	query, err := sess.Prepare(schemaConfig.SelectStatement())
	if err != nil {
		return fmt.Errorf("failed to prepare %q: %w", schemaConfig.SelectStatement(), err)
	}

	recorder := stats.NewRecorder()
	defer recorder.Stop()

	pool, err := workload.NewPool(poolConfig, sess, query, recorder)
	if err != nil {
		return err
	}

	// reporting outlives the shutdown signal until the pool has been joined
	reportCtx, stopReport := context.WithCancel(context.Background())
	defer stopReport()

	go recorder.Report(reportCtx, reportInterval)
	if metricsEndpoint != "" {
		go func() {
			if err := recorder.Serve(reportCtx, metricsEndpoint); err != nil {
				Logger.Errorf("metrics endpoint stopped: %v", err)
			}
		}()
	}

	Logger.Infof("starting %d virtual clients (workload: %s)", pool.Size(), clusterConfig.Policy)
	runErr := pool.Run(shutdown.Context())
	stopReport()

	summary := recorder.Snapshot()
	fmt.Println()
	fmt.Println("Results:")
	fmt.Print(summary.String())

	if csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		labels := map[string]string{
			"Workload":    clusterConfig.Policy,
			"Concurrency": strconv.Itoa(poolConfig.Concurrency),
			"Consistency": clusterConfig.Consistency,
		}
		if err := stats.WriteCSV(csvPath, summary, []string{"Workload", "Concurrency", "Consistency"}, labels); err != nil {
			return errors.Join(runErr, fmt.Errorf("failed to export results to CSV: %v", err))
		}
		fmt.Println("Export complete")
	}

	return runErr
}
