package stats

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

// WriteCSV writes the summary as a single row CSV file. labels are appended
// as extra columns (e.g. the routing policy and the concurrency), in the
// order given by keys.
func WriteCSV(path string, s Summary, keys []string, labels map[string]string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	header := []string{
		"ElapsedSec", "Rounds", "Requests", "FailedRounds", "RequestsPerSec",
		"RoundMeanNs", "RoundP50Ns", "RoundP99Ns", "RoundMaxNs",
		"Clients", "ClientRoundsMin", "ClientRoundsMax", "DistributionQuality",
	}
	header = append(header, keys...)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	row := []string{
		fmt.Sprintf("%.3f", s.Elapsed.Seconds()),
		strconv.FormatUint(s.Rounds, 10),
		strconv.FormatUint(s.Requests, 10),
		strconv.FormatUint(s.Errors, 10),
		fmt.Sprintf("%.0f", s.RequestsPerSec),
		strconv.FormatInt(int64(s.RoundMean), 10),
		strconv.FormatInt(int64(s.RoundP50), 10),
		strconv.FormatInt(int64(s.RoundP99), 10),
		strconv.FormatInt(int64(s.RoundMax), 10),
		strconv.Itoa(s.Clients),
		fmt.Sprintf("%.0f", s.ClientRounds.Min),
		fmt.Sprintf("%.0f", s.ClientRounds.Max),
		fmt.Sprintf("%.3f", s.ClientRounds.DistributionQuality),
	}
	for _, k := range keys {
		row = append(row, labels[k])
	}
	if err := writer.Write(row); err != nil {
		return fmt.Errorf("failed to write CSV row: %v", err)
	}

	writer.Flush()
	return writer.Error()
}
