package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jonny/kubot/internal/domain/model"
	"github.com/jonny/kubot/internal/domain/port/outbound"
)

const helpText = "Commands:\n" +
	"  help                                          this text\n" +
	"  status                                        engine status and running jobs\n" +
	"  cluster                                       cluster version and capacity\n" +
	"  pods [namespace|--all]                        list pods\n" +
	"  deployments [namespace]                       list deployments\n" +
	"  services [namespace]                          list services\n" +
	"  nodes                                         list nodes\n" +
	"  namespaces                                    list namespaces\n" +
	"  machinesets [namespace]                       list machinesets\n" +
	"  logs <pod> [namespace] [lines]                tail pod logs\n" +
	"  describe pod|deployment <name> [namespace]    describe a resource\n" +
	"  exec <pod> <namespace> <command...>           run a command, wait for output\n" +
	"  exec-async <pod> <namespace> <command...>     run in the background, get notified\n" +
	"  jobs                                          list background jobs\n" +
	"  history                                       recent commands\n" +
	"  scale deployment|machineset <name> <namespace> <replicas>\n" +
	"  apply [dry-run]                               apply the manifest on the following lines\n" +
	"  cp <pod> <namespace> <path>                   fetch a file from a pod\n" +
	"  cancel                                        drop a pending confirmation"

// Dispatcher executes typed Intents against the cluster and renders Results.
// Async intents run on background jobs whose completion is pushed through the
// notifier exactly once.
type Dispatcher struct {
	cluster      outbound.Cluster
	notifier     outbound.Notifier
	history      outbound.HistoryRepository
	audits       outbound.AuditRepository
	jobs         *JobRegistry
	execTimeout  time.Duration
	asyncTimeout time.Duration
	startedAt    time.Time
	version      string
}

func NewDispatcher(
	cluster outbound.Cluster,
	notifier outbound.Notifier,
	history outbound.HistoryRepository,
	audits outbound.AuditRepository,
	jobs *JobRegistry,
	execTimeout, asyncTimeout time.Duration,
	version string,
) *Dispatcher {
	return &Dispatcher{
		cluster:      cluster,
		notifier:     notifier,
		history:      history,
		audits:       audits,
		jobs:         jobs,
		execTimeout:  execTimeout,
		asyncTimeout: asyncTimeout,
		startedAt:    time.Now().UTC(),
		version:      version,
	}
}

// Execute runs a synchronous intent to completion. Every IntentKind is
// handled here; an unhandled kind is an engine fault, not a user error.
func (d *Dispatcher) Execute(ctx context.Context, userID, channelID string, intent model.Intent) model.Result {
	switch intent.Kind {
	case model.IntentHelp:
		return model.Success(helpText)
	case model.IntentBotStatus:
		return d.botStatus(ctx)
	case model.IntentClusterStatus:
		return d.clusterStatus(ctx)
	case model.IntentListPods:
		return d.listPods(ctx, intent)
	case model.IntentListDeployments:
		return d.listDeployments(ctx, intent)
	case model.IntentListServices:
		return d.listServices(ctx, intent)
	case model.IntentListNodes:
		return d.listNodes(ctx)
	case model.IntentListNamespaces:
		return d.listNamespaces(ctx)
	case model.IntentListMachineSets:
		return d.listMachineSets(ctx, intent)
	case model.IntentDescribePod:
		return d.describe(ctx, intent, d.cluster.DescribePod)
	case model.IntentDescribeDeployment:
		return d.describe(ctx, intent, d.cluster.DescribeDeployment)
	case model.IntentPodLogs:
		return d.podLogs(ctx, intent)
	case model.IntentListJobs:
		return d.listJobs()
	case model.IntentHistory:
		return d.listHistory(ctx, userID)
	case model.IntentScaleDeployment:
		return d.scale(ctx, intent, d.cluster.ScaleDeployment, "deployment")
	case model.IntentScaleMachineSet:
		return d.scale(ctx, intent, d.cluster.ScaleMachineSet, "machineset")
	case model.IntentApplyManifest:
		return d.apply(ctx, intent)
	case model.IntentExecSync, model.IntentExecAsync:
		return d.exec(ctx, intent)
	case model.IntentCopyFile:
		return d.copyFile(ctx, channelID, intent)
	default:
		return model.Failure(model.ErrInternal, fmt.Sprintf("no handler for intent kind %q", intent.Kind))
	}
}

// ExecuteAsync starts a background job for the intent and returns its ID.
// The completion notification is delivered exactly once: a failed send is
// retried once and then dropped with the job record still holding the Result.
func (d *Dispatcher) ExecuteAsync(userID, channelID string, intent model.Intent) string {
	job := model.NewAsyncJob(userID, channelID, intent)
	d.jobs.Put(job)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), d.asyncTimeout)
		defer cancel()

		res := d.Execute(ctx, userID, channelID, intent)
		if ctx.Err() == context.DeadlineExceeded && res.Status == model.ResultFailure {
			res = model.Failure(model.ErrTimeout, fmt.Sprintf("job %s exceeded %s", job.ID, d.asyncTimeout))
		}
		done := job.WithResult(res)
		d.jobs.Put(done)

		notifyCtx, notifyCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer notifyCancel()

		entry := model.NewHistoryEntry(userID, channelID, intent.Describe(), intent.Kind, res)
		_ = d.history.Create(notifyCtx, entry)

		finished := model.NewAuditLog(model.AuditJobFinished, userID, channelID,
			fmt.Sprintf("job %s finished as %s", job.ID, done.Status)).
			WithIntentKind(intent.Kind).
			WithMetadata("job_id", job.ID).
			WithMetadata("status", string(done.Status))
		_ = d.audits.Create(notifyCtx, finished)

		if err := d.notifier.SendResult(notifyCtx, channelID, done); err != nil {
			time.Sleep(2 * time.Second)
			_ = d.notifier.SendResult(notifyCtx, channelID, done)
		}
	}()

	return job.ID
}

func (d *Dispatcher) botStatus(ctx context.Context) model.Result {
	running := 0
	for _, job := range d.jobs.List() {
		if !job.Done() {
			running++
		}
	}
	clusterState := "reachable"
	if err := d.cluster.HealthCheck(ctx); err != nil {
		clusterState = fmt.Sprintf("unreachable (%v)", err)
	}
	return model.Success(fmt.Sprintf(
		"version %s, up %s, %d job(s) running, cluster %s",
		d.version, formatAge(time.Since(d.startedAt)), running, clusterState,
	))
}

func (d *Dispatcher) clusterStatus(ctx context.Context) model.Result {
	info, err := d.cluster.Info(ctx)
	if err != nil {
		return clusterFailure(err)
	}
	return model.Success(fmt.Sprintf(
		"Kubernetes %s\nnodes: %d/%d ready\nnamespaces: %d\npods: %d",
		info.Version, info.NodesReady, info.NodeCount, info.Namespaces, info.PodCount,
	))
}

func (d *Dispatcher) listPods(ctx context.Context, intent model.Intent) model.Result {
	pods, err := d.cluster.ListPods(ctx, intent.Namespace, intent.AllNamespaces)
	if err != nil {
		return clusterFailure(err)
	}
	if len(pods) == 0 {
		return model.Success("no pods found")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-45s %-16s %-10s %-7s %-9s %s\n", "NAME", "NAMESPACE", "PHASE", "READY", "RESTARTS", "AGE")
	for _, p := range pods {
		fmt.Fprintf(&b, "%-45s %-16s %-10s %-7s %-9d %s\n",
			p.Name, p.Namespace, p.Phase, p.Ready, p.Restarts, formatAge(p.Age))
	}
	return model.Success(strings.TrimRight(b.String(), "\n"))
}

func (d *Dispatcher) listDeployments(ctx context.Context, intent model.Intent) model.Result {
	deps, err := d.cluster.ListDeployments(ctx, intent.Namespace)
	if err != nil {
		return clusterFailure(err)
	}
	if len(deps) == 0 {
		return model.Success(fmt.Sprintf("no deployments in %s", intent.Namespace))
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-45s %-7s %s\n", "NAME", "READY", "AGE")
	for _, dep := range deps {
		fmt.Fprintf(&b, "%-45s %d/%-5d %s\n", dep.Name, dep.ReadyReplicas, dep.DesiredReplicas, formatAge(dep.Age))
	}
	return model.Success(strings.TrimRight(b.String(), "\n"))
}

func (d *Dispatcher) listServices(ctx context.Context, intent model.Intent) model.Result {
	svcs, err := d.cluster.ListServices(ctx, intent.Namespace)
	if err != nil {
		return clusterFailure(err)
	}
	if len(svcs) == 0 {
		return model.Success(fmt.Sprintf("no services in %s", intent.Namespace))
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-45s %-12s %-16s %s\n", "NAME", "TYPE", "CLUSTER-IP", "PORTS")
	for _, s := range svcs {
		fmt.Fprintf(&b, "%-45s %-12s %-16s %s\n", s.Name, s.Type, s.ClusterIP, strings.Join(s.Ports, ","))
	}
	return model.Success(strings.TrimRight(b.String(), "\n"))
}

func (d *Dispatcher) listNodes(ctx context.Context) model.Result {
	nodes, err := d.cluster.ListNodes(ctx)
	if err != nil {
		return clusterFailure(err)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-40s %-10s %-24s %-12s %s\n", "NAME", "STATUS", "ROLES", "VERSION", "AGE")
	for _, n := range nodes {
		status := "Ready"
		if !n.Ready {
			status = "NotReady"
		}
		fmt.Fprintf(&b, "%-40s %-10s %-24s %-12s %s\n",
			n.Name, status, strings.Join(n.Roles, ","), n.Version, formatAge(n.Age))
	}
	return model.Success(strings.TrimRight(b.String(), "\n"))
}

func (d *Dispatcher) listNamespaces(ctx context.Context) model.Result {
	namespaces, err := d.cluster.ListNamespaces(ctx)
	if err != nil {
		return clusterFailure(err)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-40s %-12s %s\n", "NAME", "STATUS", "AGE")
	for _, ns := range namespaces {
		fmt.Fprintf(&b, "%-40s %-12s %s\n", ns.Name, ns.Status, formatAge(ns.Age))
	}
	return model.Success(strings.TrimRight(b.String(), "\n"))
}

func (d *Dispatcher) listMachineSets(ctx context.Context, intent model.Intent) model.Result {
	sets, err := d.cluster.ListMachineSets(ctx, intent.Namespace)
	if err != nil {
		return clusterFailure(err)
	}
	if len(sets) == 0 {
		return model.Success(fmt.Sprintf("no machinesets in %s", intent.Namespace))
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-45s %-8s %s\n", "NAME", "DESIRED", "READY")
	for _, ms := range sets {
		fmt.Fprintf(&b, "%-45s %-8d %d\n", ms.Name, ms.DesiredReplicas, ms.ReadyReplicas)
	}
	return model.Success(strings.TrimRight(b.String(), "\n"))
}

func (d *Dispatcher) describe(ctx context.Context, intent model.Intent, fn func(context.Context, string, string) (string, error)) model.Result {
	out, err := fn(ctx, intent.Namespace, intent.Name)
	if err != nil {
		return clusterFailure(err)
	}
	return model.Success(out)
}

func (d *Dispatcher) podLogs(ctx context.Context, intent model.Intent) model.Result {
	logs, err := d.cluster.PodLogs(ctx, intent.Namespace, intent.Name, intent.Lines)
	if err != nil {
		return clusterFailure(err)
	}
	if strings.TrimSpace(logs) == "" {
		return model.Success(fmt.Sprintf("no log output for %s/%s", intent.Namespace, intent.Name))
	}
	return model.Success(logs)
}

func (d *Dispatcher) listJobs() model.Result {
	jobs := d.jobs.List()
	if len(jobs) == 0 {
		return model.Success("no background jobs")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-10s %-10s %-9s %s\n", "ID", "STATUS", "ELAPSED", "COMMAND")
	for _, job := range jobs {
		fmt.Fprintf(&b, "%-10s %-10s %-9s %s\n",
			job.ID, job.Status, formatAge(job.Duration()), strings.Join(job.Intent.Command, " "))
	}
	return model.Success(strings.TrimRight(b.String(), "\n"))
}

func (d *Dispatcher) listHistory(ctx context.Context, userID string) model.Result {
	page, err := d.history.List(ctx, outbound.HistoryFilter{UserID: userID}, outbound.PageRequest{Page: 0, Size: 20, Desc: true})
	if err != nil {
		return model.Failure(model.ErrInternal, fmt.Sprintf("load history: %v", err))
	}
	if len(page.Items) == 0 {
		return model.Success("no command history")
	}
	var b strings.Builder
	for _, entry := range page.Items {
		fmt.Fprintf(&b, "%s  %-16s %s\n", entry.CreatedAt.Format("2006-01-02 15:04"), entry.Status, entry.Command)
	}
	return model.Success(strings.TrimRight(b.String(), "\n"))
}

func (d *Dispatcher) scale(ctx context.Context, intent model.Intent, fn func(context.Context, string, string, int32) error, what string) model.Result {
	if err := fn(ctx, intent.Namespace, intent.Name, intent.Replicas); err != nil {
		return clusterFailure(err)
	}
	return model.Success(fmt.Sprintf("scaled %s %s/%s to %d replicas", what, intent.Namespace, intent.Name, intent.Replicas))
}

func (d *Dispatcher) apply(ctx context.Context, intent model.Intent) model.Result {
	outcome, err := d.cluster.Apply(ctx, intent.Manifest, intent.DryRun)
	if err != nil {
		return clusterFailure(err)
	}
	verb := "applied"
	if intent.DryRun {
		verb = "validated"
	}
	var b strings.Builder
	for _, res := range outcome.Applied {
		fmt.Fprintf(&b, "%s %s\n", verb, res)
	}
	payload := strings.TrimRight(b.String(), "\n")
	if len(outcome.Failed) == 0 {
		if payload == "" {
			payload = "manifest contained no documents"
		}
		return model.Success(payload)
	}
	var detail strings.Builder
	for _, f := range outcome.Failed {
		fmt.Fprintf(&detail, "%s: %s\n", f.Resource, f.Reason)
	}
	if len(outcome.Applied) == 0 {
		return model.Failure(model.ErrClusterUnavailable, strings.TrimRight(detail.String(), "\n"))
	}
	return model.PartialFailure(payload, strings.TrimRight(detail.String(), "\n"))
}

func (d *Dispatcher) exec(ctx context.Context, intent model.Intent) model.Result {
	// Async execs already run under the job deadline; the sync timeout must
	// not cut them short. The adapter derives its own deadline from Timeout.
	execCtx := ctx
	timeout := d.asyncTimeout
	if !intent.Async() {
		timeout = d.execTimeout
		var cancel context.CancelFunc
		execCtx, cancel = context.WithTimeout(ctx, d.execTimeout)
		defer cancel()
	}
	res, err := d.cluster.Exec(execCtx, outbound.ExecRequest{
		Namespace: intent.Namespace,
		Pod:       intent.Name,
		Command:   intent.Command,
		Timeout:   timeout,
	})
	if err != nil {
		return clusterFailure(err)
	}
	var b strings.Builder
	if res.Stdout != "" {
		b.WriteString(res.Stdout)
	}
	if res.Stderr != "" {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "stderr: %s", res.Stderr)
	}
	if res.ExitCode != 0 {
		return model.PartialFailure(b.String(), fmt.Sprintf("exit code %d", res.ExitCode))
	}
	if b.Len() == 0 {
		return model.Success("(no output)")
	}
	return model.Success(b.String())
}

// maxCopyBytes bounds cp payloads; the file travels base64-encoded through
// an exec stream and then to the chat transport as an upload.
const maxCopyBytes = 20 << 20

func (d *Dispatcher) copyFile(ctx context.Context, channelID string, intent model.Intent) model.Result {
	content, err := d.cluster.ReadFile(ctx, intent.Namespace, intent.Name, intent.Path)
	if err != nil {
		return clusterFailure(err)
	}
	if len(content) > maxCopyBytes {
		return model.Failure(model.ErrInternal,
			fmt.Sprintf("%s is %d bytes, over the %d byte copy limit", intent.Path, len(content), maxCopyBytes))
	}
	parts := strings.Split(intent.Path, "/")
	filename := parts[len(parts)-1]
	if err := d.notifier.SendFile(ctx, channelID, filename, content); err != nil {
		return model.Failure(model.ErrInternal, fmt.Sprintf("upload %s: %v", filename, err))
	}
	return model.Success(fmt.Sprintf("uploaded %s (%d bytes) from %s/%s", filename, len(content), intent.Namespace, intent.Name))
}

func clusterFailure(err error) model.Result {
	return model.Failure(outbound.ErrorKindOf(err), err.Error())
}

// formatAge renders a duration the way kubectl does: 45s, 12m, 3h, 6d.
func formatAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd", int(d.Hours()/24))
	}
}
