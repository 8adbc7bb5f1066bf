// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package job

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/go-logr/logr"

	"github.com/hashicorp/vault-credentials-resolver/internal/consts"
	"github.com/hashicorp/vault-credentials-resolver/internal/resolver"
)

const (
	DefaultUsernameVariable = "USERNAME"
	DefaultPasswordVariable = "PASSWORD"

	// maxOutputBytes caps the command output copied into the build log.
	maxOutputBytes = 1 << 20

	defaultTimeout = 30 * time.Minute
	maskedValue    = "****"
)

type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusFailure Status = "FAILURE"
)

// CredentialSource looks up the resolver for a credential ID.
// credentials.Store implements it.
type CredentialSource interface {
	Resolver(id string) (*resolver.Resolver, error)
}

// Binding exposes a credential to the command through two environment
// variables.
type Binding struct {
	CredentialID     string
	UsernameVariable string
	PasswordVariable string
}

func (b Binding) usernameVariable() string {
	if b.UsernameVariable == "" {
		return DefaultUsernameVariable
	}
	return b.UsernameVariable
}

func (b Binding) passwordVariable() string {
	if b.PasswordVariable == "" {
		return DefaultPasswordVariable
	}
	return b.PasswordVariable
}

// Spec describes a single job run.
type Spec struct {
	Name     string
	Bindings []Binding
	Command  []string
	Env      map[string]string
	Dir      string
	Timeout  time.Duration
}

type Result struct {
	Status   Status
	ExitCode int
	Duration time.Duration
	// Err is set for every failed run.
	Err error
}

// Runner runs jobs and writes their build log to Log.
type Runner struct {
	source CredentialSource
	log    io.Writer
}

func NewRunner(source CredentialSource, log io.Writer) *Runner {
	if log == nil {
		log = io.Discard
	}
	return &Runner{
		source: source,
		log:    log,
	}
}

// Run resolves every binding of spec, then runs its command. Any credential
// failure fails the job before the command is started. The build log always
// ends with a "Finished: <status>" line.
func (r *Runner) Run(ctx context.Context, spec Spec) *Result {
	logger := logr.FromContextOrDiscard(ctx).WithName("job").WithValues("name", spec.Name)
	start := time.Now()

	r.printf("Started %s\n", spec.Name)
	result, err := r.run(ctx, logger, spec)
	result.Duration = time.Since(start)
	if err != nil {
		result.Status = StatusFailure
		result.Err = err
		r.printf("ERROR: %s\n", err)
		logger.Error(err, "Job failed")
	} else {
		result.Status = StatusSuccess
		logger.Info("Job succeeded", "duration", result.Duration)
	}
	r.printf("Finished: %s\n", result.Status)

	return result
}

func (r *Runner) run(ctx context.Context, logger logr.Logger, spec Spec) (*Result, error) {
	result := &Result{}
	if len(spec.Command) == 0 {
		return result, errors.New("empty command")
	}

	env := make([]string, 0, len(spec.Env)+2*len(spec.Bindings))
	for k, v := range spec.Env {
		env = append(env, k+"="+v)
	}

	var secrets []string
	for _, b := range spec.Bindings {
		if r.source == nil {
			return result, errors.New("no credential source configured")
		}
		res, err := r.source.Resolver(b.CredentialID)
		if err != nil {
			return result, err
		}

		logger.V(consts.LogLevelDebug).Info("Resolving credential", "id", b.CredentialID, "path", res.Path())
		cred, err := res.Credential(ctx)
		if err != nil {
			return result, err
		}

		env = append(env,
			b.usernameVariable()+"="+cred.Username,
			b.passwordVariable()+"="+cred.Password,
		)
		if cred.Password != "" {
			secrets = append(secrets, cred.Password)
		}
	}

	timeout := spec.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, spec.Command[0], spec.Command[1:]...)
	cmd.Dir = spec.Dir
	cmd.Env = append(os.Environ(), env...)
	cmd.WaitDelay = 5 * time.Second

	var output bytes.Buffer
	w := &limitedWriter{w: &output, remaining: maxOutputBytes}
	cmd.Stdout = w
	cmd.Stderr = w

	runErr := cmd.Run()
	r.write(mask(output.String(), secrets))

	if runErr != nil {
		if ctx.Err() != nil {
			return result, fmt.Errorf("command timed out after %s", timeout)
		}
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, fmt.Errorf("command exited with code %d", result.ExitCode)
		}
		return result, fmt.Errorf("failed to run command: %w", runErr)
	}

	return result, nil
}

func (r *Runner) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(r.log, format, args...)
}

func (r *Runner) write(s string) {
	if s == "" {
		return
	}
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	_, _ = io.WriteString(r.log, s)
}

func mask(s string, secrets []string) string {
	for _, secret := range secrets {
		s = strings.ReplaceAll(s, secret, maskedValue)
	}
	return s
}

// limitedWriter drops everything written past its limit.
type limitedWriter struct {
	w         io.Writer
	remaining int
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	n := len(p)
	if lw.remaining <= 0 {
		return n, nil
	}
	if len(p) > lw.remaining {
		p = p[:lw.remaining]
	}
	written, err := lw.w.Write(p)
	lw.remaining -= written
	if err != nil {
		return written, err
	}
	return n, nil
}
