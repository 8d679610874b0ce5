package cql

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ValentinKolb/cqlbench/lib/common"
	"github.com/gocql/gocql"
)

func TestNewHostSelectionPolicy(t *testing.T) {
	tests := []struct {
		name    string
		wantNil bool
		wantErr bool
	}{
		{"", true, false},
		{PolicyTokenAware, false, false},
		{PolicyInFlight, false, false},
		{PolicyRoundRobin, false, false},
		{"ROUND", false, false},
		{"random", false, true},
	}

	for _, tc := range tests {
		policy, err := NewHostSelectionPolicy(tc.name)
		if (err != nil) != tc.wantErr {
			t.Errorf("%q: unexpected error %v", tc.name, err)
			continue
		}
		if (policy == nil) != tc.wantNil && !tc.wantErr {
			t.Errorf("%q: unexpected policy %v", tc.name, policy)
		}
	}

	policy, _ := NewHostSelectionPolicy(PolicyInFlight)
	if _, ok := policy.(*inFlightPolicy); !ok {
		t.Errorf("expected the in-flight policy, got %T", policy)
	}
}

func TestNewClusterConfig(t *testing.T) {
	cluster, err := NewClusterConfig(common.ClusterConfig{
		ContactPoints:      []string{"10.0.0.1", "10.0.0.2"},
		Policy:             PolicyInFlight,
		Consistency:        "LOCAL_QUORUM",
		TimeoutSecond:      3,
		ConnectionsPerHost: 4,
		ProtocolVersion:    4,
		Username:           "cassandra",
		Password:           "secret",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(cluster.Hosts) != 2 {
		t.Errorf("expected 2 hosts, got %v", cluster.Hosts)
	}
	if cluster.Consistency != gocql.LocalQuorum {
		t.Errorf("expected LOCAL_QUORUM, got %v", cluster.Consistency)
	}
	if cluster.Timeout != 3*time.Second || cluster.ConnectTimeout != 3*time.Second {
		t.Errorf("unexpected timeouts %v / %v", cluster.Timeout, cluster.ConnectTimeout)
	}
	if cluster.NumConns != 4 || cluster.ProtoVersion != 4 {
		t.Errorf("unexpected pool settings: conns=%d proto=%d", cluster.NumConns, cluster.ProtoVersion)
	}
	if _, ok := cluster.PoolConfig.HostSelectionPolicy.(*inFlightPolicy); !ok {
		t.Errorf("expected in-flight policy, got %T", cluster.PoolConfig.HostSelectionPolicy)
	}
	if auth, ok := cluster.Authenticator.(gocql.PasswordAuthenticator); !ok || auth.Username != "cassandra" {
		t.Errorf("expected password authenticator, got %T", cluster.Authenticator)
	}
}

func TestNewClusterConfigErrors(t *testing.T) {
	if _, err := NewClusterConfig(common.ClusterConfig{}); !errors.Is(err, ErrNoContactPoints) {
		t.Errorf("expected ErrNoContactPoints, got %v", err)
	}
	if _, err := NewClusterConfig(common.ClusterConfig{ContactPoints: []string{"h"}, Consistency: "MOST"}); err == nil {
		t.Errorf("expected error for invalid consistency")
	}
	if _, err := NewClusterConfig(common.ClusterConfig{ContactPoints: []string{"h"}, Policy: "nearest"}); err == nil {
		t.Errorf("expected error for invalid policy")
	}
}

func TestForeignRequestsAreRejected(t *testing.T) {
	s := &Session{}
	if err := s.ExecuteAsync(context.Background(), foreignRequest{}).Wait(); !errors.Is(err, ErrForeignRequest) {
		t.Errorf("expected ErrForeignRequest, got %v", err)
	}
	if err := s.Execute(context.Background(), foreignRequest{}); !errors.Is(err, ErrForeignRequest) {
		t.Errorf("expected ErrForeignRequest, got %v", err)
	}
}

type foreignRequest struct{}

func (foreignRequest) Values() []interface{} { return nil }
