// Package parallel runs independent jobs with bounded concurrency.
//
// The device poller uses it to fetch readings for many devices at once
// without opening one connection per device.
package parallel
