package common

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Cluster connection configuration
// --------------------------------------------------------------------------

// ClusterConfig holds everything needed to open a session to the cluster.
type ClusterConfig struct {
	// ContactPoints are the initial hosts used for topology discovery
	ContactPoints []string
	// Policy selects the routing policy (token, inflight, round). Empty means
	// the driver default.
	Policy string

	Consistency        string
	TimeoutSecond      int
	ConnectionsPerHost int
	ProtocolVersion    int

	// optional credentials
	Username string
	Password string
}

// Timeout returns the request timeout as a duration
func (c *ClusterConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecond) * time.Second
}

// String returns a formatted string representation of the configuration
func (c *ClusterConfig) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Cluster")
	policy := c.Policy
	if policy == "" {
		policy = "driver default"
	}
	addField("Routing Policy", policy)
	addField("Consistency", c.Consistency)
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Connections Per Host", strconv.Itoa(c.ConnectionsPerHost))
	if c.ProtocolVersion > 0 {
		addField("Protocol Version", strconv.Itoa(c.ProtocolVersion))
	} else {
		addField("Protocol Version", "auto")
	}
	if c.Username != "" {
		addField("Username", c.Username)
	}

	addSection("Contact Points")
	for i, host := range c.ContactPoints {
		addField(strconv.Itoa(i), host)
	}

	return sb.String()
}

// --------------------------------------------------------------------------
// Schema configuration
// --------------------------------------------------------------------------

// SchemaConfig names the keyspace and table the benchmark works on.
type SchemaConfig struct {
	Keyspace          string
	Table             string
	ReplicationFactor int
}

// QualifiedTable returns keyspace.table
func (c SchemaConfig) QualifiedTable() string {
	return c.Keyspace + "." + c.Table
}

// String returns a formatted string representation of the schema
func (c SchemaConfig) String() string {
	var sb strings.Builder
	sb.WriteString("\nSCHEMA\n")
	sb.WriteString(fmt.Sprintf("  %-22s: %s\n", "Table", c.QualifiedTable()))
	sb.WriteString(fmt.Sprintf("  %-22s: %d\n", "Replication Factor", c.ReplicationFactor))
	return sb.String()
}

// CreateKeyspaceStatement creates the keyspace with SimpleStrategy replication
func (c SchemaConfig) CreateKeyspaceStatement() string {
	return fmt.Sprintf("CREATE KEYSPACE %s WITH replication = {'class': 'SimpleStrategy', 'replication_factor': %d}",
		c.Keyspace, c.ReplicationFactor)
}

// CreateTableStatement creates the benchmark table
func (c SchemaConfig) CreateTableStatement() string {
	return fmt.Sprintf("CREATE TABLE %s (pk int, v int, PRIMARY KEY (pk, v))", c.QualifiedTable())
}

// InsertStatement inserts one row, bound as (pk, v)
func (c SchemaConfig) InsertStatement() string {
	return fmt.Sprintf("INSERT INTO %s (pk, v) VALUES (?, ?)", c.QualifiedTable())
}

// SelectStatement is the benchmark read, bound as (pk, threshold)
func (c SchemaConfig) SelectStatement() string {
	return fmt.Sprintf("SELECT * FROM %s WHERE pk = ? AND v > ?", c.QualifiedTable())
}

// DefaultSchemaConfig returns the schema used when nothing is configured
func DefaultSchemaConfig() SchemaConfig {
	return SchemaConfig{Keyspace: "ks", Table: "t", ReplicationFactor: 3}
}
