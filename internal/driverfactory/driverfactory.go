// Package driverfactory turns a single command-line spec into a
// driver.Driver, the selection spec §4.14 assigns to cpg-extract's
// "-driver" flag: "memory", "sqlite:<path>", or "remote:<url>".
package driverfactory

import (
	"fmt"
	"strings"

	"jvmcpg/internal/driver"
	"jvmcpg/internal/driver/memdriver"
	"jvmcpg/internal/driver/remotedriver"
	"jvmcpg/internal/driver/sqlitedriver"
)

// Open constructs the driver spec names, returning it and a close
// function the caller must call once done (a no-op for back-ends with
// nothing to release).
func Open(spec string) (driver.Driver, func() error, error) {
	noop := func() error { return nil }

	switch {
	case spec == "" || spec == "memory":
		return memdriver.New(), noop, nil

	case strings.HasPrefix(spec, "sqlite:"):
		path := strings.TrimPrefix(spec, "sqlite:")
		if path == "" {
			return nil, nil, fmt.Errorf("sqlite driver spec requires a path: %q", spec)
		}
		d, err := sqlitedriver.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return d, d.Close, nil

	case strings.HasPrefix(spec, "remote:"):
		url := strings.TrimPrefix(spec, "remote:")
		if url == "" {
			return nil, nil, fmt.Errorf("remote driver spec requires a URL: %q", spec)
		}
		return remotedriver.New(url), noop, nil

	default:
		return nil, nil, fmt.Errorf("unrecognised driver spec %q (want memory, sqlite:<path>, or remote:<url>)", spec)
	}
}
