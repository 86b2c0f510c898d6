package capture

import (
	"bufio"
	"bytes"
	"io"
	"os/exec"
	"sync"
)

// runningProcess is one live capture subprocess.
type runningProcess interface {
	// Quit asks the process to stop gracefully. For FFmpeg this writes
	// 'q' to stdin, which finalizes the output container correctly on
	// every platform, unlike SIGTERM.
	Quit() error

	// Kill terminates the process immediately.
	Kill() error

	// Done returns a channel that delivers the exit result exactly once,
	// after the diagnostic stream has been drained.
	Done() <-chan error
}

// processRunner spawns capture subprocesses.
type processRunner interface {
	// Start spawns the binary and streams its stderr lines to onLine as
	// they arrive.
	Start(path string, args []string, onLine func(string)) (runningProcess, error)
}

// osProcessRunner is the production processRunner backed by os/exec.
type osProcessRunner struct{}

var _ processRunner = osProcessRunner{}

func (osProcessRunner) Start(path string, args []string, onLine func(string)) (runningProcess, error) {
	// #nosec G204 -- path comes from binary resolution, args are built internally
	cmd := exec.Command(path, args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		_ = stdin.Close()
		return nil, err
	}

	if err := cmd.Start(); err != nil {
		_ = stdin.Close()
		return nil, err
	}

	p := &osProcess{
		cmd:   cmd,
		stdin: stdin,
		done:  make(chan error, 1),
	}

	go func() {
		scanner := bufio.NewScanner(stderr)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		scanner.Split(scanDiagnosticLines)
		for scanner.Scan() {
			onLine(scanner.Text())
		}
		// Keep draining so the process never blocks on a full pipe if
		// the scanner gave up on an oversized line.
		_, _ = io.Copy(io.Discard, stderr)
		p.done <- cmd.Wait()
	}()

	return p, nil
}

// osProcess wraps an exec.Cmd as a runningProcess.
type osProcess struct {
	cmd      *exec.Cmd
	stdin    io.WriteCloser
	quitOnce sync.Once
	done     chan error
}

func (p *osProcess) Quit() error {
	var err error
	p.quitOnce.Do(func() {
		_, err = io.WriteString(p.stdin, "q")
		_ = p.stdin.Close()
	})
	return err
}

func (p *osProcess) Kill() error {
	return p.cmd.Process.Kill()
}

func (p *osProcess) Done() <-chan error {
	return p.done
}

// scanDiagnosticLines splits on \n or \r. FFmpeg writes progress updates
// with bare carriage returns; treating both as terminators keeps the
// scanner from accumulating the whole progress stream as one line.
func scanDiagnosticLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
