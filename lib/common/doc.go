// Package common contains the configuration types and the logging setup
// shared by the command line tool and the library packages.
//
// Logging is built on the dragonboat logger package: every package obtains
// its logger once with logger.GetLogger(name) and InitLoggers installs the
// cqlbench formatting and the configured level for all known components.
package common
