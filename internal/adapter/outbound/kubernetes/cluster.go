package kubernetes

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/dynamic"
	k8s "k8s.io/client-go/kubernetes"

	"github.com/jonny/kubot/internal/domain/port/outbound"
)

var machineSetGVR = schema.GroupVersionResource{
	Group:    "machine.openshift.io",
	Version:  "v1beta1",
	Resource: "machinesets",
}

// Cluster implements outbound.Cluster against a real API server.
type Cluster struct {
	clientset   k8s.Interface
	dynamic     dynamic.Interface
	mapper      meta.RESTMapper
	execTimeout time.Duration
}

func NewCluster(clients *Clients, execTimeout time.Duration) *Cluster {
	return &Cluster{
		clientset:   clients.Clientset,
		dynamic:     clients.Dynamic,
		mapper:      clients.Mapper,
		execTimeout: execTimeout,
	}
}

var _ outbound.Cluster = (*Cluster)(nil)

func (c *Cluster) ListPods(ctx context.Context, namespace string, allNamespaces bool) ([]outbound.PodSummary, error) {
	if allNamespaces {
		namespace = metav1.NamespaceAll
	}
	list, err := c.clientset.CoreV1().Pods(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, wrapErr(err, "listing pods in %q", namespace)
	}

	out := make([]outbound.PodSummary, 0, len(list.Items))
	for i := range list.Items {
		pod := &list.Items[i]
		ready, total, restarts := containerCounts(pod)
		out = append(out, outbound.PodSummary{
			Name:      pod.Name,
			Namespace: pod.Namespace,
			Phase:     string(pod.Status.Phase),
			Ready:     fmt.Sprintf("%d/%d", ready, total),
			Restarts:  restarts,
			Node:      pod.Spec.NodeName,
			Age:       time.Since(pod.CreationTimestamp.Time),
		})
	}
	return out, nil
}

func (c *Cluster) ListDeployments(ctx context.Context, namespace string) ([]outbound.DeploymentSummary, error) {
	list, err := c.clientset.AppsV1().Deployments(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, wrapErr(err, "listing deployments in %q", namespace)
	}

	out := make([]outbound.DeploymentSummary, 0, len(list.Items))
	for i := range list.Items {
		d := &list.Items[i]
		desired := int32(0)
		if d.Spec.Replicas != nil {
			desired = *d.Spec.Replicas
		}
		out = append(out, outbound.DeploymentSummary{
			Name:            d.Name,
			Namespace:       d.Namespace,
			ReadyReplicas:   d.Status.ReadyReplicas,
			DesiredReplicas: desired,
			Age:             time.Since(d.CreationTimestamp.Time),
		})
	}
	return out, nil
}

func (c *Cluster) ListServices(ctx context.Context, namespace string) ([]outbound.ServiceSummary, error) {
	list, err := c.clientset.CoreV1().Services(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, wrapErr(err, "listing services in %q", namespace)
	}

	out := make([]outbound.ServiceSummary, 0, len(list.Items))
	for i := range list.Items {
		svc := &list.Items[i]
		ports := make([]string, 0, len(svc.Spec.Ports))
		for _, p := range svc.Spec.Ports {
			ports = append(ports, fmt.Sprintf("%d/%s", p.Port, p.Protocol))
		}
		out = append(out, outbound.ServiceSummary{
			Name:      svc.Name,
			Namespace: svc.Namespace,
			Type:      string(svc.Spec.Type),
			ClusterIP: svc.Spec.ClusterIP,
			Ports:     ports,
		})
	}
	return out, nil
}

func (c *Cluster) ListNodes(ctx context.Context) ([]outbound.NodeSummary, error) {
	list, err := c.clientset.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, wrapErr(err, "listing nodes")
	}

	out := make([]outbound.NodeSummary, 0, len(list.Items))
	for i := range list.Items {
		node := &list.Items[i]
		out = append(out, outbound.NodeSummary{
			Name:    node.Name,
			Ready:   isNodeReady(node),
			Roles:   nodeRoles(node),
			Version: node.Status.NodeInfo.KubeletVersion,
			Age:     time.Since(node.CreationTimestamp.Time),
		})
	}
	return out, nil
}

func (c *Cluster) ListNamespaces(ctx context.Context) ([]outbound.NamespaceSummary, error) {
	list, err := c.clientset.CoreV1().Namespaces().List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, wrapErr(err, "listing namespaces")
	}

	out := make([]outbound.NamespaceSummary, 0, len(list.Items))
	for i := range list.Items {
		ns := &list.Items[i]
		out = append(out, outbound.NamespaceSummary{
			Name:   ns.Name,
			Status: string(ns.Status.Phase),
			Age:    time.Since(ns.CreationTimestamp.Time),
		})
	}
	return out, nil
}

// ListMachineSets reads the OpenShift machine API through the dynamic client;
// machinesets have no typed clientset in client-go.
func (c *Cluster) ListMachineSets(ctx context.Context, namespace string) ([]outbound.MachineSetSummary, error) {
	list, err := c.dynamic.Resource(machineSetGVR).Namespace(namespace).List(ctx, metav1.ListOptions{})
	if err != nil {
		return nil, wrapErr(err, "listing machinesets in %q", namespace)
	}

	out := make([]outbound.MachineSetSummary, 0, len(list.Items))
	for i := range list.Items {
		item := &list.Items[i]
		desired, _, _ := unstructured.NestedInt64(item.Object, "spec", "replicas")
		ready, _, _ := unstructured.NestedInt64(item.Object, "status", "readyReplicas")
		out = append(out, outbound.MachineSetSummary{
			Name:            item.GetName(),
			Namespace:       item.GetNamespace(),
			DesiredReplicas: desired,
			ReadyReplicas:   ready,
		})
	}
	return out, nil
}

func (c *Cluster) DescribePod(ctx context.Context, namespace, name string) (string, error) {
	pod, err := c.clientset.CoreV1().Pods(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return "", wrapErr(err, "getting pod %s/%s", namespace, name)
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "pod %s/%s\n", pod.Namespace, pod.Name)
	fmt.Fprintf(&b, "phase: %s\n", pod.Status.Phase)
	fmt.Fprintf(&b, "node: %s\n", pod.Spec.NodeName)
	fmt.Fprintf(&b, "ip: %s\n", pod.Status.PodIP)
	fmt.Fprintf(&b, "started: %s\n", pod.CreationTimestamp.Format(time.RFC3339))
	for _, cs := range pod.Status.ContainerStatuses {
		fmt.Fprintf(&b, "container %s: ready=%v restarts=%d image=%s\n",
			cs.Name, cs.Ready, cs.RestartCount, cs.Image)
	}
	b.WriteString(c.describeEvents(ctx, namespace, name))
	return b.String(), nil
}

func (c *Cluster) DescribeDeployment(ctx context.Context, namespace, name string) (string, error) {
	d, err := c.clientset.AppsV1().Deployments(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		return "", wrapErr(err, "getting deployment %s/%s", namespace, name)
	}

	desired := int32(0)
	if d.Spec.Replicas != nil {
		desired = *d.Spec.Replicas
	}
	var b bytes.Buffer
	fmt.Fprintf(&b, "deployment %s/%s\n", d.Namespace, d.Name)
	fmt.Fprintf(&b, "replicas: %d desired, %d ready, %d available\n",
		desired, d.Status.ReadyReplicas, d.Status.AvailableReplicas)
	for _, container := range d.Spec.Template.Spec.Containers {
		fmt.Fprintf(&b, "container %s: image=%s\n", container.Name, container.Image)
	}
	for _, cond := range d.Status.Conditions {
		fmt.Fprintf(&b, "condition %s: %s (%s)\n", cond.Type, cond.Status, cond.Reason)
	}
	b.WriteString(c.describeEvents(ctx, namespace, name))
	return b.String(), nil
}

// describeEvents appends recent events for the named object. Best-effort; a
// describe never fails on the events lookup.
func (c *Cluster) describeEvents(ctx context.Context, namespace, name string) string {
	list, err := c.clientset.CoreV1().Events(namespace).List(ctx, metav1.ListOptions{
		FieldSelector: "involvedObject.name=" + name,
	})
	if err != nil || len(list.Items) == 0 {
		return ""
	}
	var b bytes.Buffer
	b.WriteString("events:\n")
	for i := range list.Items {
		e := &list.Items[i]
		fmt.Fprintf(&b, "  [%s] %s: %s\n", e.Type, e.Reason, e.Message)
	}
	return b.String()
}

func (c *Cluster) PodLogs(ctx context.Context, namespace, pod string, tailLines int64) (string, error) {
	opts := &corev1.PodLogOptions{}
	if tailLines > 0 {
		opts.TailLines = &tailLines
	}

	req := c.clientset.CoreV1().Pods(namespace).GetLogs(pod, opts)
	stream, err := req.Stream(ctx)
	if err != nil {
		return "", wrapErr(err, "streaming logs for pod %s/%s", namespace, pod)
	}
	defer stream.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(stream); err != nil {
		return "", wrapErr(err, "reading log stream for pod %s/%s", namespace, pod)
	}
	return buf.String(), nil
}

func (c *Cluster) Info(ctx context.Context) (outbound.ClusterInfo, error) {
	version, err := c.clientset.Discovery().ServerVersion()
	if err != nil {
		return outbound.ClusterInfo{}, wrapErr(err, "reading server version")
	}

	nodes, err := c.clientset.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return outbound.ClusterInfo{}, wrapErr(err, "listing nodes")
	}
	ready := 0
	for i := range nodes.Items {
		if isNodeReady(&nodes.Items[i]) {
			ready++
		}
	}

	pods, err := c.clientset.CoreV1().Pods(metav1.NamespaceAll).List(ctx, metav1.ListOptions{})
	if err != nil {
		return outbound.ClusterInfo{}, wrapErr(err, "listing pods")
	}
	namespaces, err := c.clientset.CoreV1().Namespaces().List(ctx, metav1.ListOptions{})
	if err != nil {
		return outbound.ClusterInfo{}, wrapErr(err, "listing namespaces")
	}

	return outbound.ClusterInfo{
		Version:    version.GitVersion,
		NodeCount:  len(nodes.Items),
		NodesReady: ready,
		PodCount:   len(pods.Items),
		Namespaces: len(namespaces.Items),
	}, nil
}

// HealthCheck verifies connectivity to the API server via ServerVersion.
func (c *Cluster) HealthCheck(_ context.Context) error {
	if _, err := c.clientset.Discovery().ServerVersion(); err != nil {
		return fmt.Errorf("k8s health check failed: %w", err)
	}
	return nil
}

// --- helpers ---

func containerCounts(pod *corev1.Pod) (ready, total int, restarts int32) {
	total = len(pod.Spec.Containers)
	for _, cs := range pod.Status.ContainerStatuses {
		if cs.Ready {
			ready++
		}
		restarts += cs.RestartCount
	}
	return ready, total, restarts
}

func isNodeReady(node *corev1.Node) bool {
	for _, cond := range node.Status.Conditions {
		if cond.Type == corev1.NodeReady {
			return cond.Status == corev1.ConditionTrue
		}
	}
	return false
}

func nodeRoles(node *corev1.Node) []string {
	var roles []string
	for label := range node.Labels {
		if role, found := strings.CutPrefix(label, "node-role.kubernetes.io/"); found && role != "" {
			roles = append(roles, role)
		}
	}
	sort.Strings(roles)
	return roles
}
