package kubernetes

import (
	"fmt"

	"k8s.io/apimachinery/pkg/api/meta"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/dynamic"
	k8s "k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/restmapper"
	"k8s.io/client-go/tools/clientcmd"
)

// Clients bundles the typed and dynamic API clients plus the REST mapper
// manifest application needs.
type Clients struct {
	Clientset k8s.Interface
	Dynamic   dynamic.Interface
	Mapper    meta.RESTMapper
}

// NewClients builds API clients from in-cluster config or a kubeconfig file.
func NewClients(inCluster bool, kubeconfigPath string) (*Clients, error) {
	var config *rest.Config
	var err error

	if inCluster {
		config, err = rest.InClusterConfig()
	} else {
		config, err = clientcmd.BuildConfigFromFlags("", kubeconfigPath)
	}
	if err != nil {
		return nil, fmt.Errorf("building k8s config: %w", err)
	}

	clientset, err := k8s.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("creating clientset: %w", err)
	}

	dyn, err := dynamic.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("creating dynamic client: %w", err)
	}

	disco, err := discovery.NewDiscoveryClientForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("creating discovery client: %w", err)
	}
	groupResources, err := restmapper.GetAPIGroupResources(disco)
	if err != nil {
		return nil, fmt.Errorf("discovering API groups: %w", err)
	}

	return &Clients{
		Clientset: clientset,
		Dynamic:   dyn,
		Mapper:    restmapper.NewDiscoveryRESTMapper(groupResources),
	}, nil
}
