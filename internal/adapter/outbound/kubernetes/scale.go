package kubernetes

import (
	"context"
	"encoding/json"
	"fmt"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
)

// ScaleDeployment sets the replica count via a strategic-merge patch.
func (c *Cluster) ScaleDeployment(ctx context.Context, namespace, name string, replicas int32) error {
	patch := map[string]any{
		"spec": map[string]any{
			"replicas": replicas,
		},
	}
	data, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("marshalling scale patch: %w", err)
	}

	_, err = c.clientset.AppsV1().Deployments(namespace).Patch(
		ctx, name, types.StrategicMergePatchType, data, metav1.PatchOptions{})
	if err != nil {
		return wrapErr(err, "scaling deployment %s/%s", namespace, name)
	}
	return nil
}

// ScaleMachineSet patches spec.replicas through the dynamic client. The
// machine API controller then adds or drains nodes to match.
func (c *Cluster) ScaleMachineSet(ctx context.Context, namespace, name string, replicas int32) error {
	patch := map[string]any{
		"spec": map[string]any{
			"replicas": replicas,
		},
	}
	data, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("marshalling machineset patch: %w", err)
	}

	_, err = c.dynamic.Resource(machineSetGVR).Namespace(namespace).Patch(
		ctx, name, types.MergePatchType, data, metav1.PatchOptions{})
	if err != nil {
		return wrapErr(err, "scaling machineset %s/%s", namespace, name)
	}
	return nil
}
