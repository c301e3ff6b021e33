package kubernetes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/types"
	utilyaml "k8s.io/apimachinery/pkg/util/yaml"

	"github.com/jonny/kubot/internal/domain/model"
	"github.com/jonny/kubot/internal/domain/port/outbound"
)

const fieldManager = "kubot"

// Apply server-side-applies every document in a multi-document YAML manifest.
// Documents are applied independently; one failing does not stop the rest,
// and the outcome reports each document by resource/name.
func (c *Cluster) Apply(ctx context.Context, manifest string, dryRun bool) (outbound.ApplyOutcome, error) {
	var outcome outbound.ApplyOutcome

	decoder := utilyaml.NewYAMLOrJSONDecoder(strings.NewReader(manifest), 4096)
	for {
		var obj unstructured.Unstructured
		if err := decoder.Decode(&obj); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return outcome, &outbound.ClusterError{
				Kind:    model.ErrParse,
				Message: fmt.Sprintf("decoding manifest: %v", err),
				Err:     err,
			}
		}
		if len(obj.Object) == 0 {
			continue
		}

		ref := objectRef(&obj)
		if err := c.applyDocument(ctx, &obj, dryRun); err != nil {
			outcome.Failed = append(outcome.Failed, outbound.ApplyFailure{
				Resource: ref,
				Reason:   err.Error(),
			})
			continue
		}
		outcome.Applied = append(outcome.Applied, ref)
	}
	return outcome, nil
}

func (c *Cluster) applyDocument(ctx context.Context, obj *unstructured.Unstructured, dryRun bool) error {
	gvk := obj.GroupVersionKind()
	mapping, err := c.mapper.RESTMapping(gvk.GroupKind(), gvk.Version)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", gvk, err)
	}

	resource := c.dynamic.Resource(mapping.Resource)
	var iface interface {
		Patch(ctx context.Context, name string, pt types.PatchType, data []byte, options metav1.PatchOptions, subresources ...string) (*unstructured.Unstructured, error)
	}
	if mapping.Scope.Name() == meta.RESTScopeNameNamespace {
		namespace := obj.GetNamespace()
		if namespace == "" {
			namespace = metav1.NamespaceDefault
		}
		iface = resource.Namespace(namespace)
	} else {
		iface = resource
	}

	data, err := json.Marshal(obj.Object)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", objectRef(obj), err)
	}

	opts := metav1.PatchOptions{FieldManager: fieldManager}
	if dryRun {
		opts.DryRun = []string{metav1.DryRunAll}
	}
	if _, err := iface.Patch(ctx, obj.GetName(), types.ApplyPatchType, data, opts); err != nil {
		return err
	}
	return nil
}

func objectRef(obj *unstructured.Unstructured) string {
	kind := strings.ToLower(obj.GetKind())
	if ns := obj.GetNamespace(); ns != "" {
		return fmt.Sprintf("%s/%s -n %s", kind, obj.GetName(), ns)
	}
	return fmt.Sprintf("%s/%s", kind, obj.GetName())
}
