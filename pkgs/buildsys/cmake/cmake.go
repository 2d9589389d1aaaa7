package cmake

import (
	"fmt"
	"strings"

	"github.com/dumageview/dvbuild/pkgs/buildsys"
)

// BuildType is a CMAKE_BUILD_TYPE preset.
type BuildType string

const (
	Debug          BuildType = "Debug"
	Release        BuildType = "Release"
	RelWithDebInfo BuildType = "RelWithDebInfo"
	MinSizeRel     BuildType = "MinSizeRel"
)

// DefaultBuildType is used when no build type is requested.
const DefaultBuildType = RelWithDebInfo

// BuildTypes lists the accepted build types in display order.
var BuildTypes = []BuildType{Debug, Release, RelWithDebInfo, MinSizeRel}

// ParseBuildType returns the build type named s. Names are case-sensitive.
func ParseBuildType(s string) (BuildType, error) {
	for _, bt := range BuildTypes {
		if string(bt) == s {
			return bt, nil
		}
	}
	return "", fmt.Errorf("invalid build type %q (choose from %s)", s, choices())
}

func choices() string {
	names := make([]string, len(BuildTypes))
	for i, bt := range BuildTypes {
		names[i] = string(bt)
	}
	return strings.Join(names, ", ")
}

// PluginsOption enables the optional plugin targets.
const PluginsOption = "DUMAGEVIEW_BUILD_PLUGINS"

// Compilers selects the C and C++ compilers passed to cmake via CC and CXX.
type Compilers struct {
	// Clang selects clang and clang++ as defaults.
	Clang bool
	// CC and CXX override the respective compiler, taking precedence over Clang.
	CC  string
	CXX string
}

// Env returns the compiler variables to set, or nil if nothing is overridden.
func (c Compilers) Env() map[string]string {
	env := map[string]string{}
	if c.Clang {
		env["CC"] = "clang"
		env["CXX"] = "clang++"
	}
	if c.CC != "" {
		env["CC"] = c.CC
	}
	if c.CXX != "" {
		env["CXX"] = c.CXX
	}
	if len(env) == 0 {
		return nil
	}
	return env
}

// CMake assembles a cmake configure invocation.
type CMake struct {
	sourceDir  string
	buildType  BuildType
	installDir string
	defines    []string
	compilers  Compilers
}

// New returns a CMake configuring the project in sourceDir.
func New(sourceDir string) *CMake {
	return &CMake{sourceDir: sourceDir}
}

// BuildType sets CMAKE_BUILD_TYPE.
func (c *CMake) BuildType(bt BuildType) *CMake {
	c.buildType = bt
	return c
}

// InstallDir sets CMAKE_INSTALL_PREFIX. An empty dir leaves it unset.
func (c *CMake) InstallDir(dir string) *CMake {
	c.installDir = dir
	return c
}

// DefineBool adds -D<key>=ON, or nothing when value is false.
func (c *CMake) DefineBool(key string, value bool) *CMake {
	if value {
		c.defines = append(c.defines, key+"=ON")
	}
	return c
}

// Define adds raw KEY=VALUE definitions, forwarded verbatim after -D.
func (c *CMake) Define(vars ...string) *CMake {
	c.defines = append(c.defines, vars...)
	return c
}

// Compilers sets the compiler selection.
func (c *CMake) Compilers(comp Compilers) *CMake {
	c.compilers = comp
	return c
}

// Configure returns the configure command. Tokens are ordered: build type,
// install prefix, definitions in the order added, source directory.
func (c *CMake) Configure() buildsys.Command {
	buildType := c.buildType
	if buildType == "" {
		buildType = DefaultBuildType
	}
	args := []string{"-DCMAKE_BUILD_TYPE=" + string(buildType)}
	if c.installDir != "" {
		args = append(args, "-DCMAKE_INSTALL_PREFIX="+c.installDir)
	}
	for _, d := range c.defines {
		args = append(args, "-D"+d)
	}
	args = append(args, c.sourceDir)
	return buildsys.Command{
		Name: "cmake",
		Args: args,
		Env:  c.compilers.Env(),
	}
}
