/*
Package session orchestrates solves and snapshot access for long-running
hosts.

Several requests may ask for the same problem at once. The Manager
serialises them per problem name with reference-counted in-process locks
(and a distributed lock when configured), and routes snapshot reads and
deletes through the same lock table.
*/
package session
