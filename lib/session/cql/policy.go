package cql

import (
	"fmt"
	"github.com/gocql/gocql"
	"strings"
)

// Routing policy names accepted by NewHostSelectionPolicy
const (
	PolicyTokenAware = "token"
	PolicyInFlight   = "inflight"
	PolicyRoundRobin = "round"
)

// Policies lists every supported routing policy
var Policies = []string{PolicyTokenAware, PolicyInFlight, PolicyRoundRobin}

// NewHostSelectionPolicy creates the routing policy with the given name. An
// empty name returns nil, which keeps the driver default.
func NewHostSelectionPolicy(name string) (gocql.HostSelectionPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		return nil, nil
	case PolicyTokenAware:
		return gocql.TokenAwareHostPolicy(gocql.RoundRobinHostPolicy()), nil
	case PolicyInFlight:
		return InFlightHostPolicy(gocql.RoundRobinHostPolicy()), nil
	case PolicyRoundRobin:
		return gocql.RoundRobinHostPolicy(), nil
	default:
		return nil, fmt.Errorf("invalid routing policy %s (expected one of: %s)", name, strings.Join(Policies, ", "))
	}
}

func policyName(name string) string {
	if name == "" {
		return "driver default"
	}
	return name
}
