package runner

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

const (
	// StdoutFileName is the fixed filename the child's stdout streams to.
	StdoutFileName = "training_stdout.txt"
	// StderrFileName is the fixed filename the child's stderr streams to.
	StderrFileName = "training_stderr.txt"
)

// ErrNoCommand is the config error for an empty command. It is raised
// before any subprocess spawns.
var ErrNoCommand = errors.New("no training command specified")

// superviseCommand launches the command with workDir as its current
// directory, streaming stdout and stderr verbatim to the fixed log files
// inside workDir as the process runs. Streaming keeps memory flat for
// long-running or chatty training jobs.
//
// A non-zero exit is reported with the exit code and a pointer to the
// stderr log; the full diagnostic stays on disk, not in the error.
func superviseCommand(command []string, workDir string) error {
	if len(command) == 0 {
		return ErrNoCommand
	}

	stdout, err := os.Create(filepath.Join(workDir, StdoutFileName))
	if err != nil {
		return fmt.Errorf("create stdout log: %w", err)
	}
	defer stdout.Close()

	stderr, err := os.Create(filepath.Join(workDir, StderrFileName))
	if err != nil {
		return fmt.Errorf("create stderr log: %w", err)
	}
	defer stderr.Close()

	cmd := exec.Command(command[0], command[1:]...)
	cmd.Dir = workDir
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("training command exited with code %d (see %s)", exitErr.ExitCode(), StderrFileName)
		}
		return fmt.Errorf("start training command: %w", err)
	}
	return nil
}
