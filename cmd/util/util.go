package util

import (
	"fmt"
	"github.com/ValentinKolb/cqlbench/lib/common"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"strconv"
	"strings"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50

	// PartitionKeyCount is the number of partition keys a Round queries
	PartitionKeyCount = 3
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupClusterFlags adds the connection and schema flags to a command
func SetupClusterFlags(cmd *cobra.Command) {
	key := "ip"
	cmd.PersistentFlags().StringSliceP(key, "i", nil, WrapString("Contact points of the cluster (required). Multiple addresses can be given as a comma-separated list or by repeating the flag"))

	key = "consistency"
	cmd.PersistentFlags().String(key, "ONE", WrapString("Consistency level of all requests (e.g. ONE, QUORUM, LOCAL_QUORUM)"))

	key = "timeout"
	cmd.PersistentFlags().Int(key, 10, WrapString("Request and connect timeout in seconds"))

	key = "conns-per-host"
	cmd.PersistentFlags().Int(key, 2, WrapString("Connections the driver opens per host"))

	key = "protocol-version"
	cmd.PersistentFlags().Int(key, 0, WrapString("CQL protocol version (0 = negotiate)"))

	key = "username"
	cmd.PersistentFlags().String(key, "", WrapString("Username for password authentication"))

	key = "password"
	cmd.PersistentFlags().String(key, "", WrapString("Password for password authentication"))

	key = "keyspace"
	cmd.PersistentFlags().String(key, "ks", WrapString("Keyspace of the benchmark table"))

	key = "table"
	cmd.PersistentFlags().String(key, "t", WrapString("Name of the benchmark table"))
}

// InitConfig initializes configuration from environment variables
func InitConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	viper.SetEnvPrefix("cqlbench")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}

// InitLogging applies the configured log level to all loggers
func InitLogging() error {
	return common.InitLoggers(viper.GetString("log-level"))
}

// GetClusterConfig reads the cluster configuration from viper
func GetClusterConfig(policy string) (*common.ClusterConfig, error) {
	conf := &common.ClusterConfig{
		ContactPoints:      SplitList(viper.GetStringSlice("ip")),
		Policy:             policy,
		Consistency:        strings.ToUpper(viper.GetString("consistency")),
		TimeoutSecond:      viper.GetInt("timeout"),
		ConnectionsPerHost: viper.GetInt("conns-per-host"),
		ProtocolVersion:    viper.GetInt("protocol-version"),
		Username:           viper.GetString("username"),
		Password:           viper.GetString("password"),
	}

	if len(conf.ContactPoints) == 0 {
		return nil, fmt.Errorf("at least one contact point is required (--ip)")
	}
	if conf.TimeoutSecond < 0 || conf.ConnectionsPerHost < 0 || conf.ProtocolVersion < 0 {
		return nil, fmt.Errorf("timeout, conns-per-host and protocol-version must not be negative")
	}

	return conf, nil
}

// GetSchemaConfig reads keyspace and table from viper
func GetSchemaConfig() common.SchemaConfig {
	schema := common.DefaultSchemaConfig()
	if ks := viper.GetString("keyspace"); ks != "" {
		schema.Keyspace = ks
	}
	if table := viper.GetString("table"); table != "" {
		schema.Table = table
	}
	return schema
}

// ParsePartitionKeys parses exactly PartitionKeyCount integer keys
func ParsePartitionKeys(values []string) ([]int, error) {
	values = SplitList(values)
	if len(values) != PartitionKeyCount {
		return nil, fmt.Errorf("expected %d partition keys, got %d", PartitionKeyCount, len(values))
	}

	keys := make([]int, len(values))
	for i, v := range values {
		k, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid partition key %q: %v", v, err)
		}
		keys[i] = k
	}
	return keys, nil
}

// SplitList splits every entry at commas and whitespace and drops empty parts.
// Environment variables arrive as a single entry, flags as many.
func SplitList(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.FieldsFunc(v, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		}) {
			out = append(out, part)
		}
	}
	return out
}
