package model

import (
	"fmt"
	"strings"
)

// IntentKind is the closed set of commands the session engine understands.
// Adding a command means adding a constant here and a case to the dispatcher;
// there is no string-keyed dispatch at runtime.
type IntentKind string

const (
	IntentHelp               IntentKind = "help"
	IntentBotStatus          IntentKind = "status"
	IntentClusterStatus      IntentKind = "cluster"
	IntentListPods           IntentKind = "list_pods"
	IntentListDeployments    IntentKind = "list_deployments"
	IntentListServices       IntentKind = "list_services"
	IntentListNodes          IntentKind = "list_nodes"
	IntentListNamespaces     IntentKind = "list_namespaces"
	IntentListMachineSets    IntentKind = "list_machinesets"
	IntentDescribePod        IntentKind = "describe_pod"
	IntentDescribeDeployment IntentKind = "describe_deployment"
	IntentPodLogs            IntentKind = "pod_logs"
	IntentListJobs           IntentKind = "list_jobs"
	IntentHistory            IntentKind = "history"
	IntentScaleDeployment    IntentKind = "scale_deployment"
	IntentScaleMachineSet    IntentKind = "scale_machineset"
	IntentApplyManifest      IntentKind = "apply_manifest"
	IntentExecSync           IntentKind = "exec"
	IntentExecAsync          IntentKind = "exec_async"
	IntentCopyFile           IntentKind = "copy_file"
	IntentCancel             IntentKind = "cancel"
)

// Intent is one parsed, fully-typed user request. It is built once per
// inbound event and never mutated; confirmation state lives in
// PendingAction, not here.
type Intent struct {
	Kind          IntentKind `json:"kind"`
	Namespace     string     `json:"namespace,omitempty"`
	AllNamespaces bool       `json:"all_namespaces,omitempty"`
	Name          string     `json:"name,omitempty"`
	Replicas      int32      `json:"replicas,omitempty"`
	Lines         int64      `json:"lines,omitempty"`
	Command       []string   `json:"command,omitempty"`
	Path          string     `json:"path,omitempty"`
	Manifest      string     `json:"manifest,omitempty"`
	DryRun        bool       `json:"dry_run,omitempty"`
}

// Destructive reports whether the intent must not execute without a
// freshly-typed confirmation. Scaling any workload to zero and applying a
// manifest for real are destructive; dry-run applies and every read-only
// kind are not.
func (i Intent) Destructive() bool {
	switch i.Kind {
	case IntentScaleDeployment, IntentScaleMachineSet:
		return i.Replicas == 0
	case IntentApplyManifest:
		return !i.DryRun
	}
	return false
}

// Async reports whether the intent is dispatched on a background job with a
// completion notification instead of an inline reply.
func (i Intent) Async() bool {
	return i.Kind == IntentExecAsync
}

// Describe renders the exact effect of the intent for confirmation prompts.
func (i Intent) Describe() string {
	switch i.Kind {
	case IntentScaleDeployment:
		return fmt.Sprintf("scale deployment %s/%s to %d replicas", i.Namespace, i.Name, i.Replicas)
	case IntentScaleMachineSet:
		return fmt.Sprintf("scale machineset %s/%s to %d replicas", i.Namespace, i.Name, i.Replicas)
	case IntentApplyManifest:
		if i.DryRun {
			return "validate manifest (dry-run)"
		}
		return "apply manifest to the cluster"
	case IntentExecSync, IntentExecAsync:
		return fmt.Sprintf("run `%s` in pod %s/%s", strings.Join(i.Command, " "), i.Namespace, i.Name)
	case IntentCopyFile:
		return fmt.Sprintf("copy %s from pod %s/%s", i.Path, i.Namespace, i.Name)
	default:
		return string(i.Kind)
	}
}
