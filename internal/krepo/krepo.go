// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package krepo wraps the knowledge_repo CLI: initializing a repository and
// registering converted notebooks with it.
package krepo

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

const binKnowledgeRepo = "knowledge_repo"

// commitMessage is fed to the add subcommand on stdin in place of an
// interactive commit prompt.
const commitMessage = "generated by automated knowledge repo setup"

// executor abstracts command execution for testing. Run returns the process
// exit code; err is non-nil only when the command could not be started.
type executor interface {
	LookPath(file string) (string, error)
	Run(name string, args []string, stdin io.Reader, output io.Writer) (int, error)
}

// osExecutor is the production executor backed by os/exec. Stdout and stderr
// are combined into the single output writer.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) Run(name string, args []string, stdin io.Reader, output io.Writer) (int, error) {
	cmd := exec.Command(name, args...)
	cmd.Stdin = stdin
	cmd.Stdout = output
	cmd.Stderr = output
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return 0, err
	}
	return 0, nil
}

var defaultExec executor = &osExecutor{}

// RunResult captures the outcome of a knowledge_repo invocation. Non-zero
// exit is reportable per file, never fatal to a batch.
type RunResult struct {
	ExitCode int
	Output   string
}

// Ok reports whether the command exited cleanly.
func (r RunResult) Ok() bool {
	return r.ExitCode == 0
}

// Client runs knowledge_repo subcommands against one repository.
type Client struct {
	repoDir string
	exec    executor
}

// NewClient returns a Client for the repository at repoDir. It verifies the
// knowledge_repo binary is on PATH.
func NewClient(repoDir string) (*Client, error) {
	return newClient(repoDir, defaultExec)
}

func newClient(repoDir string, exec executor) (*Client, error) {
	if _, err := exec.LookPath(binKnowledgeRepo); err != nil {
		return nil, fmt.Errorf("%s binary not found on PATH: %w", binKnowledgeRepo, err)
	}
	return &Client{repoDir: repoDir, exec: exec}, nil
}

// EnsureRepo initializes the repository when its directory does not exist yet.
func (c *Client) EnsureRepo() error {
	if _, err := os.Stat(c.repoDir); err == nil {
		return nil
	}
	res, err := c.run(nil, "--repo", c.repoDir, "init")
	if err != nil {
		return err
	}
	if !res.Ok() {
		return fmt.Errorf("initializing knowledge repo %s: exit %d: %s",
			c.repoDir, res.ExitCode, strings.TrimSpace(res.Output))
	}
	return nil
}

// Add registers the serialized notebook at file under destination inside the
// repository, feeding the fixed commit message on stdin. The result carries
// the exit code and combined output for the caller to report.
func (c *Client) Add(file, destination string) (RunResult, error) {
	return c.run(strings.NewReader(commitMessage),
		"--repo", c.repoDir, "add", file, "-p", destination)
}

func (c *Client) run(stdin io.Reader, args ...string) (RunResult, error) {
	var out strings.Builder
	code, err := c.exec.Run(binKnowledgeRepo, args, stdin, &out)
	if err != nil {
		return RunResult{}, fmt.Errorf("running %s: %w", binKnowledgeRepo, err)
	}
	return RunResult{ExitCode: code, Output: out.String()}, nil
}
