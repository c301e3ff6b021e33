package service_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/jonny/kubot/internal/domain/model"
	"github.com/jonny/kubot/internal/domain/service"
)

func mustParse(t *testing.T, text string) model.Intent {
	t.Helper()
	intent, err := service.NewInterpreter("default", 50).Parse(text)
	if err != nil {
		t.Fatalf("Parse(%q): %v", text, err)
	}
	return intent
}

func mustFail(t *testing.T, text string) *service.ParseError {
	t.Helper()
	_, err := service.NewInterpreter("default", 50).Parse(text)
	if err == nil {
		t.Fatalf("Parse(%q): expected error", text)
	}
	var pe *service.ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("Parse(%q): expected ParseError, got %T", text, err)
	}
	return pe
}

func TestInterpreter_BareVerbs(t *testing.T) {
	cases := map[string]model.IntentKind{
		"help":       model.IntentHelp,
		"status":     model.IntentBotStatus,
		"cluster":    model.IntentClusterStatus,
		"jobs":       model.IntentListJobs,
		"history":    model.IntentHistory,
		"cancel":     model.IntentCancel,
		"nodes":      model.IntentListNodes,
		"namespaces": model.IntentListNamespaces,
	}
	for text, kind := range cases {
		if intent := mustParse(t, text); intent.Kind != kind {
			t.Errorf("%q: expected %s, got %s", text, kind, intent.Kind)
		}
	}
}

func TestInterpreter_VerbIsCaseInsensitive(t *testing.T) {
	if intent := mustParse(t, "PODS prod"); intent.Kind != model.IntentListPods {
		t.Errorf("expected list_pods, got %s", intent.Kind)
	}
}

func TestInterpreter_Pods(t *testing.T) {
	intent := mustParse(t, "pods")
	if intent.Namespace != "default" {
		t.Errorf("expected default namespace fallback, got %s", intent.Namespace)
	}

	intent = mustParse(t, "pods kube-system")
	if intent.Namespace != "kube-system" {
		t.Errorf("expected kube-system, got %s", intent.Namespace)
	}

	intent = mustParse(t, "pods --all")
	if !intent.AllNamespaces {
		t.Error("expected all-namespaces listing")
	}

	mustFail(t, "pods one two")
	mustFail(t, "pods Bad_Namespace")
}

func TestInterpreter_MachineSetsDefaultNamespace(t *testing.T) {
	intent := mustParse(t, "machinesets")
	if intent.Namespace != "openshift-machine-api" {
		t.Errorf("expected openshift-machine-api, got %s", intent.Namespace)
	}
	intent = mustParse(t, "machinesets custom-ns")
	if intent.Namespace != "custom-ns" {
		t.Errorf("expected custom-ns, got %s", intent.Namespace)
	}
}

func TestInterpreter_Logs(t *testing.T) {
	intent := mustParse(t, "logs web-1")
	if intent.Kind != model.IntentPodLogs || intent.Name != "web-1" {
		t.Fatalf("unexpected intent: %+v", intent)
	}
	if intent.Namespace != "default" || intent.Lines != 50 {
		t.Errorf("expected defaults, got ns=%s lines=%d", intent.Namespace, intent.Lines)
	}

	intent = mustParse(t, "logs web-1 prod 200")
	if intent.Namespace != "prod" || intent.Lines != 200 {
		t.Errorf("expected prod/200, got ns=%s lines=%d", intent.Namespace, intent.Lines)
	}

	mustFail(t, "logs")
	mustFail(t, "logs web-1 prod zero")
	mustFail(t, "logs web-1 prod -5")
}

func TestInterpreter_Describe(t *testing.T) {
	intent := mustParse(t, "describe pod web-1 prod")
	if intent.Kind != model.IntentDescribePod || intent.Name != "web-1" || intent.Namespace != "prod" {
		t.Errorf("unexpected intent: %+v", intent)
	}

	intent = mustParse(t, "describe deployment web")
	if intent.Kind != model.IntentDescribeDeployment || intent.Namespace != "default" {
		t.Errorf("unexpected intent: %+v", intent)
	}

	mustFail(t, "describe")
	mustFail(t, "describe service web")
}

func TestInterpreter_Exec(t *testing.T) {
	intent := mustParse(t, "exec web-1 prod ls -la /tmp")
	if intent.Kind != model.IntentExecSync {
		t.Fatalf("expected exec, got %s", intent.Kind)
	}
	if intent.Name != "web-1" || intent.Namespace != "prod" {
		t.Errorf("unexpected target: %+v", intent)
	}
	if strings.Join(intent.Command, " ") != "ls -la /tmp" {
		t.Errorf("unexpected command: %v", intent.Command)
	}

	intent = mustParse(t, "exec-async web-1 prod tar czf /tmp/dump")
	if intent.Kind != model.IntentExecAsync || !intent.Async() {
		t.Errorf("expected async exec, got %+v", intent)
	}

	pe := mustFail(t, "exec web-1 prod")
	if !strings.Contains(pe.Usage, "usage:") {
		t.Errorf("expected usage hint, got %s", pe.Usage)
	}
}

func TestInterpreter_Scale(t *testing.T) {
	intent := mustParse(t, "scale deployment web prod 3")
	if intent.Kind != model.IntentScaleDeployment || intent.Replicas != 3 {
		t.Errorf("unexpected intent: %+v", intent)
	}
	if intent.Destructive() {
		t.Error("scaling to a positive count is not destructive")
	}

	intent = mustParse(t, "scale machineset workers openshift-machine-api 0")
	if intent.Kind != model.IntentScaleMachineSet || intent.Replicas != 0 {
		t.Errorf("unexpected intent: %+v", intent)
	}
	if !intent.Destructive() {
		t.Error("scaling to zero must be destructive")
	}

	// Replica count is safety-relevant and never defaulted.
	mustFail(t, "scale deployment web prod")
	mustFail(t, "scale deployment web prod -1")
	mustFail(t, "scale deployment web prod three")
	mustFail(t, "scale statefulset web prod 2")
}

func TestInterpreter_Apply(t *testing.T) {
	intent := mustParse(t, "apply\nkind: ConfigMap\nmetadata:\n  name: demo")
	if intent.Kind != model.IntentApplyManifest || intent.DryRun {
		t.Fatalf("unexpected intent: %+v", intent)
	}
	if !strings.HasPrefix(intent.Manifest, "kind: ConfigMap") {
		t.Errorf("manifest body lost: %q", intent.Manifest)
	}
	if !intent.Destructive() {
		t.Error("a real apply must be destructive")
	}

	intent = mustParse(t, "apply dry-run\nkind: ConfigMap")
	if !intent.DryRun {
		t.Error("expected dry-run flag")
	}
	if intent.Destructive() {
		t.Error("dry-run apply must not be destructive")
	}

	mustFail(t, "apply")
	mustFail(t, "apply now\nkind: ConfigMap")
}

func TestInterpreter_Copy(t *testing.T) {
	intent := mustParse(t, "cp web-1 prod /var/log/app.log")
	if intent.Kind != model.IntentCopyFile || intent.Path != "/var/log/app.log" {
		t.Errorf("unexpected intent: %+v", intent)
	}

	mustFail(t, "cp web-1 prod relative/path")
	mustFail(t, "cp web-1 prod")
}

func TestInterpreter_UnknownVerb(t *testing.T) {
	pe := mustFail(t, "reboot everything")
	if !strings.Contains(pe.Usage, "help") {
		t.Errorf("expected pointer to help, got %s", pe.Usage)
	}
	mustFail(t, "")
}
