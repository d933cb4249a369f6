package resolver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"slices"
	"strings"
	"time"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/lockbump/internal/domain/entities"
)

const (
	// PackageManager is the ecosystem tag this resolver serves.
	PackageManager = "pip"
	waitDelay      = 5 * time.Second
)

// PipCompileResolverRepository runs pip-compile inside a workspace.
type PipCompileResolverRepository struct {
	command     []string
	timeout     time.Duration
	allowUnsafe bool
}

// NewPipCompileResolverRepository creates a resolver from the resolver settings.
func NewPipCompileResolverRepository(settings entities.ResolverSettings) *PipCompileResolverRepository {
	command := slices.Clone(settings.Command)
	if len(command) == 0 {
		command = []string{"pip-compile"}
	}
	return &PipCompileResolverRepository{
		command:     command,
		timeout:     settings.Timeout,
		allowUnsafe: settings.AllowUnsafe,
	}
}

// Name returns the package manager tag.
func (it *PipCompileResolverRepository) Name() string { return PackageManager }

// Compile runs one pip-compile invocation. A run exceeding the configured
// timeout is killed and reported as ErrResolverTimeout; a failed run is
// reported as ErrResolverNonZeroExit with its output attached.
func (it *PipCompileResolverRepository) Compile(
	ctx context.Context,
	workspace *entities.Workspace,
	request entities.CompileRequest,
) (*entities.CompileResult, error) {
	if it.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, it.timeout)
		defer cancel()
	}

	args := it.arguments(request)
	logger.Infof("[pip-compile] Compiling %s -> %s", request.ManifestFile, request.OutputFile)
	logger.Debugf("[pip-compile] %s %s", it.command[0], strings.Join(args, " "))

	//nolint:gosec // command comes from configuration, arguments are file names inside the workspace
	cmd := exec.CommandContext(ctx, it.command[0], args...)
	cmd.Dir = workspace.Path
	cmd.Env = buildEnvironment(os.Environ(), request.Credentials)
	cmd.WaitDelay = waitDelay

	output, err := cmd.CombinedOutput()
	outputStr := redact(string(output), request.Credentials)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w after %s compiling %s", entities.ErrResolverTimeout, it.timeout, request.ManifestFile)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			logger.Debugf("[pip-compile] Output:\n%s", outputStr)
			return nil, fmt.Errorf(
				"%w (exit code %d) compiling %s\nOutput:\n%s",
				entities.ErrResolverNonZeroExit, exitErr.ExitCode(), request.ManifestFile, outputStr,
			)
		}
		return nil, fmt.Errorf("failed to run %s: %w", it.command[0], err)
	}

	return &entities.CompileResult{Output: outputStr}, nil
}

func (it *PipCompileResolverRepository) arguments(request entities.CompileRequest) []string {
	args := slices.Clone(it.command[1:])
	args = append(args, "--build-isolation", "--output-file="+request.OutputFile)
	if request.GenerateHashes {
		args = append(args, "--generate-hashes")
	}
	if it.allowUnsafe {
		args = append(args, "--allow-unsafe")
	}
	if request.UpgradePackage != "" && request.UpgradeVersion != "" {
		args = append(args, "-P", request.UpgradePackage+"=="+request.UpgradeVersion)
	}
	return append(args, request.ManifestFile)
}
