package cql

import (
	"context"
	"errors"
	"fmt"
	"github.com/ValentinKolb/cqlbench/lib/common"
	"github.com/ValentinKolb/cqlbench/lib/session"
	"github.com/gocql/gocql"
	"github.com/lni/dragonboat/v4/logger"
	"strings"
)

var Logger = logger.GetLogger("cql")

var (
	// ErrNoContactPoints is returned when the config has no hosts
	ErrNoContactPoints = errors.New("at least one contact point is required")
	// ErrForeignRequest is returned for requests not created by this package
	ErrForeignRequest = errors.New("request was not bound by a cql session")
)

// Session implements session.ISession with a gocql session
type Session struct {
	session *gocql.Session
	config  common.ClusterConfig
}

// NewClusterConfig converts the cluster configuration into a gocql config.
// No connection is opened.
func NewClusterConfig(config common.ClusterConfig) (*gocql.ClusterConfig, error) {
	if len(config.ContactPoints) == 0 {
		return nil, ErrNoContactPoints
	}

	cluster := gocql.NewCluster(config.ContactPoints...)

	if config.Consistency != "" {
		consistency, err := gocql.ParseConsistencyWrapper(config.Consistency)
		if err != nil {
			return nil, fmt.Errorf("invalid consistency %q: %w", config.Consistency, err)
		}
		cluster.Consistency = consistency
	}

	if config.TimeoutSecond > 0 {
		cluster.Timeout = config.Timeout()
		cluster.ConnectTimeout = config.Timeout()
	}
	if config.ConnectionsPerHost > 0 {
		cluster.NumConns = config.ConnectionsPerHost
	}
	if config.ProtocolVersion > 0 {
		cluster.ProtoVersion = config.ProtocolVersion
	}
	if config.Username != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: config.Username,
			Password: config.Password,
		}
	}

	policy, err := NewHostSelectionPolicy(config.Policy)
	if err != nil {
		return nil, err
	}
	if policy != nil {
		cluster.PoolConfig.HostSelectionPolicy = policy
	}

	return cluster, nil
}

// Connect opens a session to the cluster
func Connect(config common.ClusterConfig) (*Session, error) {
	cluster, err := NewClusterConfig(config)
	if err != nil {
		return nil, err
	}

	// route driver messages through our logger
	gocql.Logger = driverLogger{log: logger.GetLogger("gocql")}

	s, err := cluster.CreateSession()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", strings.Join(config.ContactPoints, ","), err)
	}

	Logger.Infof("connected to %s (policy: %s)", strings.Join(config.ContactPoints, ","), policyName(config.Policy))

	return &Session{
		session: s,
		config:  config,
	}, nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see session.ISession)
// --------------------------------------------------------------------------

func (s *Session) Prepare(query string) (session.IPreparedQuery, error) {
	if strings.TrimSpace(query) == "" {
		return nil, errors.New("empty statement")
	}
	return &preparedQuery{session: s.session, statement: query}, nil
}

func (s *Session) ExecuteAsync(ctx context.Context, req session.IRequest) session.IResultFuture {
	r, ok := req.(*request)
	if !ok {
		return session.Resolved(ErrForeignRequest)
	}

	f := session.NewFuture()
	go func() {
		f.Resolve(r.read(ctx))
	}()
	return f
}

func (s *Session) Execute(ctx context.Context, req session.IRequest) error {
	r, ok := req.(*request)
	if !ok {
		return ErrForeignRequest
	}
	return r.query.WithContext(ctx).Exec()
}

func (s *Session) Close() {
	s.session.Close()
	Logger.Infof("session closed")
}

// --------------------------------------------------------------------------
// Prepared queries and requests
// --------------------------------------------------------------------------

type preparedQuery struct {
	session   *gocql.Session
	statement string
}

func (p *preparedQuery) Bind(values ...interface{}) (session.IRequest, error) {
	return &request{
		query:  p.session.Query(p.statement, values...),
		values: values,
	}, nil
}

func (p *preparedQuery) Statement() string {
	return p.statement
}

type request struct {
	query  *gocql.Query
	values []interface{}
}

func (r *request) Values() []interface{} {
	return r.values
}

// read executes the request and discards the returned rows
func (r *request) read(ctx context.Context) error {
	return r.query.WithContext(ctx).Iter().Close()
}

// --------------------------------------------------------------------------
// Driver logger
// --------------------------------------------------------------------------

// driverLogger implements gocql.StdLogger
type driverLogger struct {
	log logger.ILogger
}

func (l driverLogger) Print(v ...interface{}) {
	l.log.Warningf("%s", fmt.Sprint(v...))
}

func (l driverLogger) Printf(format string, v ...interface{}) {
	l.log.Warningf(strings.TrimSuffix(format, "\n"), v...)
}

func (l driverLogger) Println(v ...interface{}) {
	l.log.Warningf("%s", strings.TrimSuffix(fmt.Sprintln(v...), "\n"))
}
