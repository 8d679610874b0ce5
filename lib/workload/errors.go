package workload

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig is returned for pool configurations that can not run
	ErrInvalidConfig = errors.New("invalid pool configuration")
	// ErrAlreadyStarted is returned when Start is called twice
	ErrAlreadyStarted = errors.New("pool already started")
	// ErrNotStarted is returned when Join is called before Start
	ErrNotStarted = errors.New("pool not started")
)

// Stage names the step of a Round that failed
type Stage string

const (
	StageBind       Stage = "bind"
	StageCompletion Stage = "completion"
)

// RoundError is the fatal outcome of a VirtualClient. It identifies the
// client, the Round and the partition key of the failed request.
type RoundError struct {
	ClientID     int
	Round        uint64
	PartitionKey int
	Stage        Stage
	Err          error
}

func (e *RoundError) Error() string {
	return fmt.Sprintf("client %d: round %d: %s of partition key %d failed: %v",
		e.ClientID, e.Round, e.Stage, e.PartitionKey, e.Err)
}

func (e *RoundError) Unwrap() error {
	return e.Err
}
