// Package actions runs the privileged helper scripts of the panel.
//
// Every helper lives in a single actions directory and is invoked as
//
//	sudo -n <actions-dir>/<module> <args...>
//
// Run waits for the helper and returns its standard output; a non-zero exit is
// converted into *interfaces.ActionError carrying the helper's standard error.
// RunAsync starts the helper in its own process group and returns a Process
// that can be polled without blocking and terminated early. Termination
// signals the whole process group so helpers that fork (gpg, hkp clients) are
// stopped as well.
//
// MockRunner and MockJob implement the same contracts on top of testify's mock
// package for use in tests of dependent packages.
package actions
