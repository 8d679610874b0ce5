package stats

import (
	"context"
	"fmt"
	"github.com/ValentinKolb/cqlbench/lib/workload"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
	gometrics "github.com/rcrowley/go-metrics"
	"io"
	"sort"
	"strings"
	"time"
)

var Logger = logger.GetLogger("stats")

// Recorder implements workload.IRoundObserver
type Recorder struct {
	set           *metrics.Set
	rounds        *metrics.Counter
	requests      *metrics.Counter
	roundErrors   *metrics.Counter
	roundDuration *metrics.Histogram

	requestMeter gometrics.Meter
	roundTimer   gometrics.Timer

	perClient *xsync.MapOf[int, *xsync.Counter]
	start     time.Time
}

// NewRecorder creates a recorder with its own metrics set. Call Stop when
// the run is over.
func NewRecorder() *Recorder {
	set := metrics.NewSet()
	return &Recorder{
		set:           set,
		rounds:        set.NewCounter("cqlbench_rounds_total"),
		requests:      set.NewCounter("cqlbench_requests_total"),
		roundErrors:   set.NewCounter("cqlbench_round_errors_total"),
		roundDuration: set.NewHistogram("cqlbench_round_duration_seconds"),
		requestMeter:  gometrics.NewMeter(),
		roundTimer:    gometrics.NewTimer(),
		perClient:     xsync.NewMapOf[int, *xsync.Counter](),
		start:         time.Now(),
	}
}

func (r *Recorder) ObserveRound(result workload.RoundResult) {
	r.rounds.Inc()
	r.requests.Add(result.Requests)
	r.requestMeter.Mark(int64(result.Requests))
	r.roundDuration.Update(result.Duration.Seconds())
	r.roundTimer.Update(result.Duration)

	if result.Err != nil {
		r.roundErrors.Inc()
	}

	c, _ := r.perClient.LoadOrCompute(result.ClientID, func() *xsync.Counter {
		return xsync.NewCounter()
	})
	c.Inc()
}

// Stop releases the background resources of the go-metrics meters
func (r *Recorder) Stop() {
	r.requestMeter.Stop()
	r.roundTimer.Stop()
}

// WritePrometheus writes all metrics in the Prometheus text format
func (r *Recorder) WritePrometheus(w io.Writer) {
	r.set.WritePrometheus(w)
}

// --------------------------------------------------------------------------
// Summary
// --------------------------------------------------------------------------

// Summary is a point in time view of a run
type Summary struct {
	Elapsed        time.Duration
	Rounds         uint64
	Requests       uint64
	Errors         uint64
	RequestsPerSec float64 // mean over the whole run
	RecentPerSec   float64 // one minute moving average
	RoundMean      time.Duration
	RoundP50       time.Duration
	RoundP99       time.Duration
	RoundMax       time.Duration
	Clients        int
	ClientRounds   DistributionStats
}

// Snapshot returns the current summary
func (r *Recorder) Snapshot() Summary {
	timer := r.roundTimer.Snapshot()
	meter := r.requestMeter.Snapshot()
	ps := timer.Percentiles([]float64{0.5, 0.99})

	var perClient []float64
	r.perClient.Range(func(_ int, c *xsync.Counter) bool {
		perClient = append(perClient, float64(c.Value()))
		return true
	})
	sort.Float64s(perClient)

	return Summary{
		Elapsed:        time.Since(r.start),
		Rounds:         r.rounds.Get(),
		Requests:       r.requests.Get(),
		Errors:         r.roundErrors.Get(),
		RequestsPerSec: meter.RateMean(),
		RecentPerSec:   meter.Rate1(),
		RoundMean:      time.Duration(timer.Mean()),
		RoundP50:       time.Duration(ps[0]),
		RoundP99:       time.Duration(ps[1]),
		RoundMax:       time.Duration(timer.Max()),
		Clients:        len(perClient),
		ClientRounds:   NewDistributionStats(perClient),
	}
}

// String returns a formatted string representation of the summary
func (s Summary) String() string {
	var sb strings.Builder

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	sb.WriteString("\nSUMMARY\n")
	addField("Elapsed", s.Elapsed.Round(time.Millisecond).String())
	addField("Rounds", fmt.Sprint(s.Rounds))
	addField("Requests", fmt.Sprint(s.Requests))
	addField("Failed Rounds", fmt.Sprint(s.Errors))
	addField("Requests/sec", fmt.Sprintf("%.0f", s.RequestsPerSec))
	addField("Round Latency", fmt.Sprintf("mean %s, p50 %s, p99 %s, max %s", s.RoundMean, s.RoundP50, s.RoundP99, s.RoundMax))
	addField("Active Clients", fmt.Sprint(s.Clients))
	addField("Rounds per Client", fmt.Sprintf("min %.0f, max %.0f, quality %.2f",
		s.ClientRounds.Min, s.ClientRounds.Max, s.ClientRounds.DistributionQuality))
	return sb.String()
}

// --------------------------------------------------------------------------
// Periodic reporting
// --------------------------------------------------------------------------

// Report logs a short status line every interval until ctx is done
func (r *Recorder) Report(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s := r.Snapshot()
			Logger.Infof("%d requests (%.0f/s, 1m %.0f/s), round p50 %s p99 %s, %d failed rounds",
				s.Requests, s.RequestsPerSec, s.RecentPerSec, s.RoundP50, s.RoundP99, s.Errors)
		}
	}
}
