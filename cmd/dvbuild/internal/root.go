package internal

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/qiniu/x/log"
	"github.com/spf13/cobra"

	"github.com/dumageview/dvbuild/internal/build"
	"github.com/dumageview/dvbuild/internal/env"
	"github.com/dumageview/dvbuild/pkgs/buildsys"
	"github.com/dumageview/dvbuild/pkgs/buildsys/cmake"
)

const defaultBuildDir = "_build"

type options struct {
	verbose       bool
	clean         bool
	plugins       bool
	install       bool
	sudo          bool
	installPrefix string
	buildDir      string
	buildType     buildTypeValue
	clang         bool
	cc            string
	cxx           string
	cmakeVars     []string
	projectDir    string
}

// runFunc performs the build described by a Config.
type runFunc func(ctx context.Context, cfg build.Config) error

// newRootCmd returns the root command set up to parse args. CMake variables
// are split off before cobra sees the arguments so that -D can take zero or
// more values.
func newRootCmd(run runFunc, args []string) *cobra.Command {
	rest, vars := splitCMakeVars(args)
	opts := &options{
		buildType: buildTypeValue(cmake.DefaultBuildType),
		cmakeVars: vars,
	}

	cmd := &cobra.Command{
		Use:   "dvbuild [flags] [-D VAR...]",
		Short: "dvbuild configures and builds the project with CMake and make",
		Long: `dvbuild runs cmake in the build directory, compiles with make using
every available processor, and optionally installs the result.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return usageErrorf("unexpected arguments: %v", args)
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			if opts.verbose {
				log.SetOutputLevel(log.Ldebug)
			}
			cfg, err := opts.config()
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}
	cmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return &usageError{err}
	})

	flags := cmd.Flags()
	flags.SortFlags = false
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "print build commands")
	flags.BoolVarP(&opts.clean, "clean", "c", false, "remove existing build directory")
	flags.BoolVarP(&opts.plugins, "plugins", "p", false, "build plugins with default target")
	flags.BoolVarP(&opts.install, "install", "i", false, "install after build")
	flags.BoolVarP(&opts.sudo, "sudo", "S", false, "use sudo for installation")
	flags.StringVarP(&opts.installPrefix, "install_prefix", "I", "", "set installation `PREFIX`")
	flags.StringVarP(&opts.buildDir, "build-dir", "b", defaultBuildDir, "set directory where cmake is run")
	flags.VarP(&opts.buildType, "build_type", "t", "set build configuration {"+buildTypeChoices()+"}")
	flags.BoolVar(&opts.clang, "clang", false, "use Clang")
	flags.StringVar(&opts.cc, "cc", "", "set C compiler")
	flags.StringVar(&opts.cxx, "cxx", "", "set C++ compiler")
	flags.StringArrayP("cmake-vars", "D", nil, "set options for CMake, zero or more (`CMAKE_VAR`...)")
	flags.StringVar(&opts.projectDir, "project-dir", "", "project directory (default: the directory dvbuild belongs to)")
	cmd.SetArgs(rest)
	return cmd
}

// config resolves the parsed flags into a build.Config.
func (o *options) config() (build.Config, error) {
	projectDir := o.projectDir
	if projectDir == "" {
		dir, err := env.ProjectDir()
		if err != nil {
			return build.Config{}, fmt.Errorf("failed to locate project directory: %w", err)
		}
		projectDir = dir
	}

	cfg := build.Config{
		BuildDir:      env.BuildDir(projectDir, o.buildDir),
		BuildType:     cmake.BuildType(o.buildType),
		InstallPrefix: o.installPrefix,
		Plugins:       o.plugins,
		Verbose:       o.verbose,
		Clean:         o.clean,
		Install:       o.install,
		Sudo:          o.sudo,
		Compilers: cmake.Compilers{
			Clang: o.clang,
			CC:    o.cc,
			CXX:   o.cxx,
		},
		CMakeVars: o.cmakeVars,
	}
	log.Debugf("build directory %s, build type %s", cfg.BuildDir, cfg.BuildType)
	return cfg, nil
}

// Execute runs the root command and exits with the status of the first
// failing step, 2 for usage errors, or 1 for any other failure.
// This is called by main.main().
func Execute() {
	log.SetOutputLevel(log.Linfo)
	rootCmd := newRootCmd(build.Run, os.Args[1:])
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	var stepErr *buildsys.StepError
	if errors.As(err, &stepErr) {
		return stepErr.ExitCode()
	}
	var uerr *usageError
	if errors.As(err, &uerr) {
		return 2
	}
	return 1
}

type usageError struct {
	err error
}

func usageErrorf(format string, args ...any) error {
	return &usageError{fmt.Errorf(format, args...)}
}

func (e *usageError) Error() string { return e.err.Error() }

func (e *usageError) Unwrap() error { return e.err }
