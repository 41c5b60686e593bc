package driverfactory

import (
	"path/filepath"
	"testing"

	"jvmcpg/internal/driver/memdriver"
	"jvmcpg/internal/driver/remotedriver"
	"jvmcpg/internal/driver/sqlitedriver"
)

func TestOpenEmptyOrMemorySpecReturnsAMemdriver(t *testing.T) {
	for _, spec := range []string{"", "memory"} {
		d, closeFn, err := Open(spec)
		if err != nil {
			t.Fatalf("Open(%q): %v", spec, err)
		}
		if _, ok := d.(*memdriver.Driver); !ok {
			t.Errorf("Open(%q) = %T, want *memdriver.Driver", spec, d)
		}
		if err := closeFn(); err != nil {
			t.Errorf("close: %v", err)
		}
	}
}

func TestOpenSqliteSpecOpensAFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cpg.db")
	d, closeFn, err := Open("sqlite:" + path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, ok := d.(*sqlitedriver.Driver); !ok {
		t.Errorf("Open(sqlite:...) = %T, want *sqlitedriver.Driver", d)
	}
	if err := closeFn(); err != nil {
		t.Errorf("close: %v", err)
	}
}

func TestOpenSqliteSpecWithNoPathFails(t *testing.T) {
	if _, _, err := Open("sqlite:"); err == nil {
		t.Fatal("expected an error for a sqlite spec with an empty path")
	}
}

func TestOpenRemoteSpecReturnsARemoteDriverClient(t *testing.T) {
	d, closeFn, err := Open("remote:http://localhost:8080")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if _, ok := d.(*remotedriver.Driver); !ok {
		t.Errorf("Open(remote:...) = %T, want *remotedriver.Driver", d)
	}
	if err := closeFn(); err != nil {
		t.Errorf("close: %v", err)
	}
}

func TestOpenRemoteSpecWithNoURLFails(t *testing.T) {
	if _, _, err := Open("remote:"); err == nil {
		t.Fatal("expected an error for a remote spec with an empty URL")
	}
}

func TestOpenUnrecognisedSpecFails(t *testing.T) {
	if _, _, err := Open("postgres:whatever"); err == nil {
		t.Fatal("expected an error for an unrecognised driver spec")
	}
}
