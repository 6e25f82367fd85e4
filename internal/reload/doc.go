// Package reload runs the command that makes the kernel re-read a sysctl
// file, typically "sysctl -p <file>".
//
// The Reloader captures exit code and combined output in an Outcome so the
// caller can decide whether a failure is fatal. Command execution goes
// through the Runner interface; ExecRunner is the os/exec implementation.
package reload
