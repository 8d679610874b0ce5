package seed

import (
	"context"
	"fmt"
	"github.com/ValentinKolb/cqlbench/lib/common"
	"github.com/ValentinKolb/cqlbench/lib/session"
	"github.com/lni/dragonboat/v4/logger"
	"time"
)

var Logger = logger.GetLogger("seed")

// Config describes the dataset
type Config struct {
	Schema           common.SchemaConfig
	Partitions       int
	RowsPerPartition int
}

// DefaultConfig returns 10 partitions with 1000 rows each in ks.t
func DefaultConfig() Config {
	return Config{
		Schema:           common.DefaultSchemaConfig(),
		Partitions:       10,
		RowsPerPartition: 1000,
	}
}

// Rows returns the total number of rows written by a seed run
func (c Config) Rows() int {
	return c.Partitions * c.RowsPerPartition
}

// String returns a formatted string representation of the configuration
func (c Config) String() string {
	return c.Schema.String() + fmt.Sprintf("  %-22s: %d x %d rows\n", "Dataset", c.Partitions, c.RowsPerPartition)
}

// InsertError reports the row whose insert failed
type InsertError struct {
	PartitionKey    int
	ClusteringValue int
	Err             error
}

func (e *InsertError) Error() string {
	return fmt.Sprintf("insert of (pk=%d, v=%d) failed: %v", e.PartitionKey, e.ClusteringValue, e.Err)
}

func (e *InsertError) Unwrap() error {
	return e.Err
}

// Seed creates the schema and writes the dataset. Cancelling ctx aborts the
// run between two statements.
func Seed(ctx context.Context, sess session.ISession, config Config) error {
	if config.Partitions < 0 || config.RowsPerPartition < 0 {
		return fmt.Errorf("invalid dataset size %d x %d", config.Partitions, config.RowsPerPartition)
	}
	start := time.Now()

	// schema
	for _, stmt := range []string{
		config.Schema.CreateKeyspaceStatement(),
		config.Schema.CreateTableStatement(),
	} {
		if err := execute(ctx, sess, stmt); err != nil {
			return err
		}
		Logger.Infof("executed: %s", stmt)
	}

	insert, err := sess.Prepare(config.Schema.InsertStatement())
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}

	// data
	for pk := 0; pk < config.Partitions; pk++ {
		for v := 1; v <= config.RowsPerPartition; v++ {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("seeding aborted at (pk=%d, v=%d): %w", pk, v, err)
			}

			req, err := insert.Bind(pk, v)
			if err == nil {
				err = sess.Execute(ctx, req)
			}
			if err != nil {
				return &InsertError{PartitionKey: pk, ClusteringValue: v, Err: err}
			}
		}
		Logger.Infof("partition %d/%d written", pk+1, config.Partitions)
	}

	Logger.Infof("writing to database is finished: %d rows in %s", config.Rows(), time.Since(start).Round(time.Millisecond))
	return nil
}

// execute runs a statement without bound values
func execute(ctx context.Context, sess session.ISession, stmt string) error {
	query, err := sess.Prepare(stmt)
	if err != nil {
		return fmt.Errorf("failed to prepare %q: %w", stmt, err)
	}
	req, err := query.Bind()
	if err != nil {
		return fmt.Errorf("failed to bind %q: %w", stmt, err)
	}
	if err := sess.Execute(ctx, req); err != nil {
		return fmt.Errorf("failed to execute %q: %w", stmt, err)
	}
	return nil
}
