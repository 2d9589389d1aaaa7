package internal

import (
	"strings"

	"github.com/spf13/pflag"

	"github.com/dumageview/dvbuild/pkgs/buildsys/cmake"
)

// buildTypeValue is a pflag.Value accepting only known build types.
type buildTypeValue cmake.BuildType

var _ pflag.Value = (*buildTypeValue)(nil)

func (v *buildTypeValue) String() string { return string(*v) }

func (v *buildTypeValue) Set(s string) error {
	bt, err := cmake.ParseBuildType(s)
	if err != nil {
		return err
	}
	*v = buildTypeValue(bt)
	return nil
}

func (v *buildTypeValue) Type() string { return "type" }

func buildTypeChoices() string {
	names := make([]string, len(cmake.BuildTypes))
	for i, bt := range cmake.BuildTypes {
		names[i] = string(bt)
	}
	return strings.Join(names, ",")
}
