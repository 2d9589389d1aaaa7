package build

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"

	"github.com/qiniu/x/log"

	"github.com/dumageview/dvbuild/pkgs/buildsys"
	"github.com/dumageview/dvbuild/pkgs/buildsys/cmake"
	"github.com/dumageview/dvbuild/pkgs/buildsys/gmake"
)

// sourceDir is the CMake source directory relative to the build directory.
const sourceDir = ".."

// Config holds the resolved options for one build.
type Config struct {
	// BuildDir is the absolute build directory.
	BuildDir      string
	BuildType     cmake.BuildType
	InstallPrefix string
	Plugins       bool
	Verbose       bool
	Clean         bool
	Install       bool
	Sudo          bool
	Compilers     cmake.Compilers
	// CMakeVars are extra KEY=VALUE definitions, forwarded in order.
	CMakeVars []string
}

// Builder runs the clean, configure, compile and install steps.
type Builder struct {
	runner buildsys.Runner
	numCPU func() int
}

// NewBuilder returns a Builder executing commands through runner.
func NewBuilder(runner buildsys.Runner) *Builder {
	return &Builder{runner: runner, numCPU: runtime.NumCPU}
}

// Run builds with the default process runner.
func Run(ctx context.Context, cfg Config) error {
	return NewBuilder(buildsys.ExecRunner{}).Run(ctx, cfg)
}

// Run executes the build. It changes the process working directory to
// cfg.BuildDir while the external tools run and restores it before returning.
func (b *Builder) Run(ctx context.Context, cfg Config) (err error) {
	if cfg.BuildDir == "" {
		return errors.New("build directory not set")
	}
	if cfg.BuildType == "" {
		cfg.BuildType = cmake.DefaultBuildType
	}
	if _, err := cmake.ParseBuildType(string(cfg.BuildType)); err != nil {
		return err
	}

	if cfg.Clean {
		if err := cleanExisting(cfg.BuildDir); err != nil {
			return err
		}
	}
	if err := ensureDir(cfg.BuildDir); err != nil {
		return err
	}

	restore, err := chdir(cfg.BuildDir)
	if err != nil {
		return err
	}
	defer func() {
		if rerr := restore(); rerr != nil && err == nil {
			err = rerr
		}
	}()

	configure := cmake.New(sourceDir).
		BuildType(cfg.BuildType).
		InstallDir(cfg.InstallPrefix).
		DefineBool(cmake.PluginsOption, cfg.Plugins).
		Define(cfg.CMakeVars...).
		Compilers(cfg.Compilers).
		Configure()
	if err := b.step(ctx, cfg.BuildDir, "configure", configure); err != nil {
		return err
	}

	mk := gmake.New().Verbose(cfg.Verbose).Jobs(b.numCPU()).Sudo(cfg.Sudo)
	if err := b.step(ctx, cfg.BuildDir, "compile", mk.Build()); err != nil {
		return err
	}

	if cfg.Install {
		if err := b.step(ctx, cfg.BuildDir, "install", mk.Install()); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) step(ctx context.Context, dir, name string, cmd buildsys.Command) error {
	cmd.Dir = dir
	log.Debugf("%s step", name)
	if err := b.runner.Run(ctx, cmd); err != nil {
		return &buildsys.StepError{Step: name, Command: cmd, Err: err}
	}
	return nil
}

// cleanExisting removes the directory tree or file at path, if any.
func cleanExisting(path string) error {
	fi, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("clean %s: %w", path, err)
	}
	if fi.IsDir() {
		log.Infof("removing build directory %s", path)
		err = os.RemoveAll(path)
	} else {
		log.Infof("removing file %s", path)
		err = os.Remove(path)
	}
	if err != nil {
		return fmt.Errorf("clean %s: %w", path, err)
	}
	return nil
}

func ensureDir(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("create build directory: %w", err)
	}
	return nil
}

// chdir switches the process working directory to dir and returns a func
// that switches back.
func chdir(dir string) (restore func() error, err error) {
	prev, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}
	if err := os.Chdir(dir); err != nil {
		return nil, fmt.Errorf("enter build directory: %w", err)
	}
	log.Debugf("entered %s", dir)
	return func() error {
		if err := os.Chdir(prev); err != nil {
			return fmt.Errorf("restore working directory: %w", err)
		}
		log.Debugf("returned to %s", prev)
		return nil
	}, nil
}
