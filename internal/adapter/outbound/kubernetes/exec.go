package kubernetes

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"os/exec"
	"strings"

	"github.com/jonny/kubot/internal/domain/model"
	"github.com/jonny/kubot/internal/domain/port/outbound"
)

// Exec runs the command inside the pod by shelling out to kubectl. This
// avoids SPDY/streaming complexity and honors the caller's context deadline.
func (c *Cluster) Exec(ctx context.Context, req outbound.ExecRequest) (outbound.ExecResult, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.execTimeout
	}
	execCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// kubectl exec -n <ns> <pod> [-c <container>] -- <cmd...>
	kubectlArgs := []string{"exec", "-n", req.Namespace, req.Pod}
	if req.Container != "" {
		kubectlArgs = append(kubectlArgs, "-c", req.Container)
	}
	kubectlArgs = append(kubectlArgs, "--")
	kubectlArgs = append(kubectlArgs, req.Command...)

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(execCtx, "kubectl", kubectlArgs...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	exitCode := 0
	if err != nil {
		if execCtx.Err() == context.DeadlineExceeded {
			return outbound.ExecResult{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: 1},
				&outbound.ClusterError{
					Kind:    model.ErrTimeout,
					Message: fmt.Sprintf("exec in %s/%s exceeded %s", req.Namespace, req.Pod, timeout),
					Err:     execCtx.Err(),
				}
		}
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			return outbound.ExecResult{Stdout: stdout.String(), Stderr: stderr.String(), ExitCode: 1},
				&outbound.ClusterError{
					Kind:    model.ErrClusterUnavailable,
					Message: fmt.Sprintf("running kubectl exec: %v", err),
					Err:     err,
				}
		}
	}

	return outbound.ExecResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode,
	}, nil
}

// ReadFile fetches a file from the pod by base64-encoding it over exec.
// Binary-safe without needing a tar stream on either end.
func (c *Cluster) ReadFile(ctx context.Context, namespace, pod, path string) ([]byte, error) {
	res, err := c.Exec(ctx, outbound.ExecRequest{
		Namespace: namespace,
		Pod:       pod,
		Command:   []string{"sh", "-c", fmt.Sprintf("base64 < %s", shellQuote(path))},
	})
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		return nil, &outbound.ClusterError{
			Kind:    model.ErrClusterNotFound,
			Message: fmt.Sprintf("reading %s from %s/%s: %s", path, namespace, pod, strings.TrimSpace(res.Stderr)),
		}
	}

	content, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(res.Stdout, "\n", ""))
	if err != nil {
		return nil, &outbound.ClusterError{
			Kind:    model.ErrInternal,
			Message: fmt.Sprintf("decoding %s from %s/%s: %v", path, namespace, pod, err),
			Err:     err,
		}
	}
	return content, nil
}

// shellQuote single-quotes a path for the remote sh invocation.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
