// Package stats observes the Rounds of a benchmark run and turns them into
// metrics, periodic console reports and a final summary.
//
// The package contains:
//   - recorder: a workload.IRoundObserver backed by VictoriaMetrics counters
//     and histograms (Prometheus exposition) and go-metrics meters and timers
//     (rates and latency percentiles for the console)
//   - distribution: Stats and DistributionStats, used to judge how evenly the
//     Rounds were spread over the virtual clients
//   - server: an optional HTTP endpoint serving /metrics
//   - csv: export of the final summary
//
// Observing a Round costs a handful of atomic updates, the virtual clients
// never wait on the recorder.
package stats
