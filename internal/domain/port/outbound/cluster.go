package outbound

import (
	"context"
	"errors"
	"time"

	"github.com/jonny/kubot/internal/domain/model"
)

type PodSummary struct {
	Name      string
	Namespace string
	Phase     string
	Ready     string
	Restarts  int32
	Node      string
	Age       time.Duration
}

type DeploymentSummary struct {
	Name            string
	Namespace       string
	ReadyReplicas   int32
	DesiredReplicas int32
	Age             time.Duration
}

type ServiceSummary struct {
	Name      string
	Namespace string
	Type      string
	ClusterIP string
	Ports     []string
}

type NodeSummary struct {
	Name    string
	Ready   bool
	Roles   []string
	Version string
	Age     time.Duration
}

type NamespaceSummary struct {
	Name   string
	Status string
	Age    time.Duration
}

type MachineSetSummary struct {
	Name            string
	Namespace       string
	DesiredReplicas int64
	ReadyReplicas   int64
}

type ClusterInfo struct {
	Version    string
	NodeCount  int
	NodesReady int
	PodCount   int
	Namespaces int
}

type ExecRequest struct {
	Namespace string
	Pod       string
	Container string
	Command   []string
	Timeout   time.Duration
}

type ExecResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// ApplyOutcome reports per-document results for a multi-document manifest.
// Some documents succeeding while others fail is an expected outcome, not an
// error.
type ApplyOutcome struct {
	Applied []string
	Failed  []ApplyFailure
}

type ApplyFailure struct {
	Resource string
	Reason   string
}

// ClusterError carries the domain error classification for a failed cluster
// call so callers never inspect transport-level errors directly.
type ClusterError struct {
	Kind    model.ErrorKind
	Message string
	Err     error
}

func (e *ClusterError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *ClusterError) Unwrap() error { return e.Err }

// ErrorKindOf extracts the classification from err, defaulting to internal
// for anything that is not a ClusterError.
func ErrorKindOf(err error) model.ErrorKind {
	var ce *ClusterError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return model.ErrTimeout
	}
	return model.ErrInternal
}

// Cluster abstracts every Kubernetes interaction the dispatcher performs.
type Cluster interface {
	ListPods(ctx context.Context, namespace string, allNamespaces bool) ([]PodSummary, error)
	ListDeployments(ctx context.Context, namespace string) ([]DeploymentSummary, error)
	ListServices(ctx context.Context, namespace string) ([]ServiceSummary, error)
	ListNodes(ctx context.Context) ([]NodeSummary, error)
	ListNamespaces(ctx context.Context) ([]NamespaceSummary, error)
	ListMachineSets(ctx context.Context, namespace string) ([]MachineSetSummary, error)
	DescribePod(ctx context.Context, namespace, name string) (string, error)
	DescribeDeployment(ctx context.Context, namespace, name string) (string, error)
	PodLogs(ctx context.Context, namespace, pod string, tailLines int64) (string, error)
	ScaleDeployment(ctx context.Context, namespace, name string, replicas int32) error
	ScaleMachineSet(ctx context.Context, namespace, name string, replicas int32) error
	Apply(ctx context.Context, manifest string, dryRun bool) (ApplyOutcome, error)
	Exec(ctx context.Context, req ExecRequest) (ExecResult, error)
	ReadFile(ctx context.Context, namespace, pod, path string) ([]byte, error)
	Info(ctx context.Context) (ClusterInfo, error)
	HealthCheck(ctx context.Context) error
}
