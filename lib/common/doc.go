// Package common provides the ambient pieces shared by the command line tool
// and the libraries: the log format installed as the dragonboat logger
// factory, and the resolved lock configuration.
//
// Every package of the module logs through logger.GetLogger(<name>); after
// InitLoggers has been called all of them (and dragonboat's own loggers, used
// by the replicated word table) print the same line format:
//
//	2025/01/02 15:04:05 WARN  | wlock           | forced takeover: ...
package common
