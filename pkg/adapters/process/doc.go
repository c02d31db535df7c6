// Package process runs allow-listed local commands as validation engines.
//
// Commands are declared in a commands.yaml file and referenced by name from
// problems with the "process" engine kind. The object under check is sent
// as JSON on stdin; exit code 0 accepts it and exit code 1 rejects it.
package process
