package stats

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ValentinKolb/cqlbench/lib/workload"
)

func TestRecorderCountsRounds(t *testing.T) {
	r := NewRecorder()
	defer r.Stop()

	var wg sync.WaitGroup
	for client := 0; client < 4; client++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for round := 1; round <= 25; round++ {
				r.ObserveRound(workload.RoundResult{
					ClientID: id,
					Round:    uint64(round),
					Requests: 3,
					Duration: time.Millisecond,
				})
			}
		}(client)
	}
	wg.Wait()
	r.ObserveRound(workload.RoundResult{ClientID: 0, Round: 26, Requests: 3, Duration: time.Millisecond, Err: errors.New("boom")})

	s := r.Snapshot()
	if s.Rounds != 101 || s.Requests != 303 || s.Errors != 1 {
		t.Errorf("unexpected counts: rounds=%d requests=%d errors=%d", s.Rounds, s.Requests, s.Errors)
	}
	if s.Clients != 4 {
		t.Errorf("expected 4 clients, got %d", s.Clients)
	}
	if s.ClientRounds.Min != 25 || s.ClientRounds.Max != 26 {
		t.Errorf("unexpected per client rounds: %+v", s.ClientRounds)
	}
	if s.RoundMax != time.Millisecond {
		t.Errorf("expected max round latency 1ms, got %s", s.RoundMax)
	}
	if !strings.Contains(s.String(), "SUMMARY") {
		t.Errorf("expected summary header")
	}
}

func TestRecorderWritesPrometheus(t *testing.T) {
	r := NewRecorder()
	defer r.Stop()
	r.ObserveRound(workload.RoundResult{ClientID: 1, Round: 1, Requests: 3, Duration: 2 * time.Millisecond})

	var buf bytes.Buffer
	r.WritePrometheus(&buf)
	out := buf.String()

	for _, want := range []string{
		"cqlbench_rounds_total 1",
		"cqlbench_requests_total 3",
		"cqlbench_round_errors_total 0",
		"cqlbench_round_duration_seconds",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in exposition:\n%s", want, out)
		}
	}
}

func TestRecorderServe(t *testing.T) {
	// reserve a free port
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}
	addr := l.Addr().String()
	l.Close()

	r := NewRecorder()
	defer r.Stop()
	r.ObserveRound(workload.RoundResult{Requests: 3, Duration: time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Serve(ctx, addr) }()

	var body []byte
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := http.Get("http://" + addr + "/metrics")
		if err == nil {
			body, _ = io.ReadAll(resp.Body)
			resp.Body.Close()
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("metrics endpoint not reachable: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}

	if !strings.Contains(string(body), "cqlbench_requests_total 3") {
		t.Errorf("unexpected body:\n%s", body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("server did not shut down")
	}
}

func TestReportStopsWithContext(t *testing.T) {
	r := NewRecorder()
	defer r.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Report(ctx, time.Millisecond)
		close(done)
	}()

	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("report did not stop")
	}
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.csv")
	s := Summary{Elapsed: 2 * time.Second, Rounds: 10, Requests: 30, RequestsPerSec: 15, Clients: 2}

	err := WriteCSV(path, s, []string{"Policy", "Concurrency"}, map[string]string{"Policy": "token", "Concurrency": "2"})
	if err != nil {
		t.Fatalf("failed to write CSV: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open CSV: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("failed to read CSV: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header and one row, got %d records", len(records))
	}

	header, row := records[0], records[1]
	if len(header) != len(row) {
		t.Fatalf("header and row differ in length")
	}
	if header[len(header)-2] != "Policy" || row[len(row)-2] != "token" || row[len(row)-1] != "2" {
		t.Errorf("unexpected label columns: %v / %v", header, row)
	}
	if row[1] != "10" || row[2] != "30" {
		t.Errorf("unexpected counts: %v", row)
	}
}
