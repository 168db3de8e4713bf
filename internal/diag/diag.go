// Package diag logs host diagnostics at startup: kernel version and the
// instance correlation ID used to tag this node's log lines and metrics.
//
// Grounded on runZeroInc-sockstats's pkg/linux/init.go, which resolves
// *kernel.VersionInfo the same way to pick a TCP_INFO struct layout; here
// the version is informational only, logged once so operators can
// correlate radio misbehavior with a known-bad kernel build.
package diag

import (
	"fmt"

	"github.com/docker/docker/pkg/parsers/kernel"
	"github.com/rs/xid"
	"github.com/sirupsen/logrus"
)

// KernelVersion returns the running kernel's version, or an error if it
// could not be determined (e.g. non-Linux host, or /proc unavailable).
func KernelVersion() (*kernel.VersionInfo, error) {
	v, err := kernel.GetKernelVersion()
	if err != nil {
		return nil, fmt.Errorf("diag: reading kernel version: %w", err)
	}
	return v, nil
}

// InstanceID returns a fresh correlation ID for this process's lifetime,
// used the way sockstats' exporter examples tag each accepted connection
// with xid.New().String().
func InstanceID() string {
	return xid.New().String()
}

// LogStartup emits one structured line describing the host this node is
// running on, best-effort: a failure to read the kernel version is logged
// and otherwise ignored, since it never blocks the node from starting.
func LogStartup(log *logrus.Entry, instanceID string) {
	fields := logrus.Fields{"instance": instanceID}

	if v, err := KernelVersion(); err != nil {
		log.WithError(err).Warn("could not determine kernel version")
	} else {
		fields["kernel"] = v.String()
	}

	log.WithFields(fields).Info("starting meshnode")
}
