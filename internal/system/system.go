package system

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
)

type Runner interface {
	Run(ctx context.Context, cmd string, args ...string) (stdout, stderr string, err error)
}

// NetInfo reports the address other devices can reach this one on.
type NetInfo interface {
	IP(ctx context.Context) (string, error)
}

type NoopRunner struct{}

func (NoopRunner) Run(ctx context.Context, cmd string, args ...string) (string, string, error) {
	return "", "", nil
}

type NoopNetInfo struct{}

func (NoopNetInfo) IP(ctx context.Context) (string, error) { return "", nil }

// RunnerNetInfo resolves the address with LocalIPv4.
type RunnerNetInfo struct {
	Runner Runner
}

func (n RunnerNetInfo) IP(ctx context.Context) (string, error) { return LocalIPv4(ctx, n.Runner) }

// ShellRunner executes commands via sudo and uses PATH to resolve scripts.
// It returns stdout, stderr, and an error if the command exits non-zero.
type ShellRunner struct{}

func (ShellRunner) Run(ctx context.Context, cmd string, args ...string) (string, string, error) {
	fullArgs := append([]string{cmd}, args...)
	c := exec.CommandContext(ctx, "sudo", fullArgs...)
	var outBuf, errBuf bytes.Buffer
	c.Stdout = &outBuf
	c.Stderr = &errBuf
	if err := c.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return outBuf.String(), errBuf.String(), fmt.Errorf("exit %d: %w", exitErr.ExitCode(), err)
		}
		return outBuf.String(), errBuf.String(), err
	}
	return outBuf.String(), errBuf.String(), nil
}
