// Package gmake assembles make invocations for a CMake-generated build tree.
package gmake

import (
	"strconv"

	"github.com/dumageview/dvbuild/pkgs/buildsys"
)

// Make drives the Makefiles in the current build directory.
type Make struct {
	verbose bool
	jobs    int
	sudo    bool
}

// New returns a Make with default settings.
func New() *Make {
	return &Make{}
}

// Verbose makes the generated Makefiles print full command lines.
func (m *Make) Verbose(v bool) *Make {
	m.verbose = v
	return m
}

// Jobs sets the -j parallelism. Values below 1 omit the flag.
func (m *Make) Jobs(n int) *Make {
	m.jobs = n
	return m
}

// Sudo runs the install step through sudo.
func (m *Make) Sudo(v bool) *Make {
	m.sudo = v
	return m
}

// Build returns the compile command.
func (m *Make) Build() buildsys.Command {
	var args []string
	if m.verbose {
		args = append(args, "VERBOSE=1")
	}
	if m.jobs > 0 {
		args = append(args, "-j"+strconv.Itoa(m.jobs))
	}
	return buildsys.Command{Name: "make", Args: args}
}

// Install returns the install command.
func (m *Make) Install() buildsys.Command {
	if m.sudo {
		return buildsys.Command{Name: "sudo", Args: []string{"make", "install"}}
	}
	return buildsys.Command{Name: "make", Args: []string{"install"}}
}
