// Package voterregistry implements the governance allow-list: the flat set
// of accounts permitted to propose and vote. Registration is privileged and
// permanent; there is no removal operation. Other governance modules read
// the registry through their own ports, never by importing this package's
// internals.
package voterregistry
