// Package seed provisions the benchmark schema and writes the deterministic
// dataset the read workload queries.
//
// Seeding is sequential and runs once: the keyspace and table are created
// (not idempotent, an existing schema makes the run fail) and then every
// partition key 0..Partitions-1 receives the clustering values
// 1..RowsPerPartition, in ascending nested order. The first failing statement
// aborts the run; nothing is retried.
package seed
