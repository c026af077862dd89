// Package hooks installs shared git hook scripts into the fleet repositories.
package hooks
