package service

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/jonny/kubot/internal/domain/model"
)

// dns1123Label is the conservative pattern namespaces and resource names must
// match before any argument reaches the cluster.
var dns1123Label = regexp.MustCompile(`^[a-z0-9]([-a-z0-9]{0,61}[a-z0-9])?$`)

const machineAPINamespace = "openshift-machine-api"

// ParseError carries a usage hint for a malformed command. It is a user
// error, not an engine fault.
type ParseError struct {
	Usage string
}

func (e *ParseError) Error() string { return e.Usage }

func usage(format string, args ...any) error {
	return &ParseError{Usage: fmt.Sprintf(format, args...)}
}

// Interpreter turns raw command text into typed Intents. It never consults
// the cluster; unknown resource names pass through and fail at dispatch.
type Interpreter struct {
	defaultNamespace string
	defaultLogLines  int64
}

func NewInterpreter(defaultNamespace string, defaultLogLines int64) *Interpreter {
	if defaultNamespace == "" {
		defaultNamespace = "default"
	}
	if defaultLogLines <= 0 {
		defaultLogLines = 50
	}
	return &Interpreter{defaultNamespace: defaultNamespace, defaultLogLines: defaultLogLines}
}

// Parse maps the command verb and arguments to an Intent, or returns a
// ParseError with a usage hint. Safety-relevant arguments (replica counts,
// resource kinds) are never defaulted; only the namespace may fall back to
// the configured default.
func (p *Interpreter) Parse(text string) (model.Intent, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Intent{}, usage("empty command; try `help`")
	}

	// Manifest body travels on lines after the verb line.
	verbLine, body, _ := strings.Cut(text, "\n")
	fields := strings.Fields(verbLine)
	verb, args := strings.ToLower(fields[0]), fields[1:]

	switch verb {
	case "help":
		return model.Intent{Kind: model.IntentHelp}, nil
	case "status":
		return model.Intent{Kind: model.IntentBotStatus}, nil
	case "cluster":
		return model.Intent{Kind: model.IntentClusterStatus}, nil
	case "jobs":
		return model.Intent{Kind: model.IntentListJobs}, nil
	case "history":
		return model.Intent{Kind: model.IntentHistory}, nil
	case "cancel":
		return model.Intent{Kind: model.IntentCancel}, nil
	case "nodes":
		return model.Intent{Kind: model.IntentListNodes}, nil
	case "namespaces":
		return model.Intent{Kind: model.IntentListNamespaces}, nil
	case "pods":
		return p.parseNamespacedList(model.IntentListPods, "pods", args, true)
	case "deployments":
		return p.parseNamespacedList(model.IntentListDeployments, "deployments", args, false)
	case "services":
		return p.parseNamespacedList(model.IntentListServices, "services", args, false)
	case "machinesets":
		intent, err := p.parseNamespacedList(model.IntentListMachineSets, "machinesets", args, false)
		if err == nil && len(args) == 0 {
			intent.Namespace = machineAPINamespace
		}
		return intent, err
	case "logs":
		return p.parseLogs(args)
	case "describe":
		return p.parseDescribe(args)
	case "exec":
		return p.parseExec(model.IntentExecSync, "exec", args)
	case "exec-async":
		return p.parseExec(model.IntentExecAsync, "exec-async", args)
	case "scale":
		return p.parseScale(args)
	case "apply":
		return p.parseApply(args, body)
	case "cp":
		return p.parseCopy(args)
	default:
		return model.Intent{}, usage("unknown command %q; try `help`", verb)
	}
}

func (p *Interpreter) parseNamespacedList(kind model.IntentKind, verb string, args []string, allowAll bool) (model.Intent, error) {
	switch {
	case len(args) == 0:
		return model.Intent{Kind: kind, Namespace: p.defaultNamespace}, nil
	case len(args) == 1 && args[0] == "--all" && allowAll:
		return model.Intent{Kind: kind, AllNamespaces: true}, nil
	case len(args) == 1:
		ns, err := validNamespace(args[0])
		if err != nil {
			return model.Intent{}, err
		}
		return model.Intent{Kind: kind, Namespace: ns}, nil
	default:
		return model.Intent{}, usage("usage: %s [namespace]", verb)
	}
}

func (p *Interpreter) parseLogs(args []string) (model.Intent, error) {
	if len(args) < 1 || len(args) > 3 {
		return model.Intent{}, usage("usage: logs <pod> [namespace] [lines]")
	}
	intent := model.Intent{
		Kind:      model.IntentPodLogs,
		Name:      args[0],
		Namespace: p.defaultNamespace,
		Lines:     p.defaultLogLines,
	}
	if err := validName("pod", intent.Name); err != nil {
		return model.Intent{}, err
	}
	if len(args) >= 2 {
		ns, err := validNamespace(args[1])
		if err != nil {
			return model.Intent{}, err
		}
		intent.Namespace = ns
	}
	if len(args) == 3 {
		lines, err := strconv.ParseInt(args[2], 10, 64)
		if err != nil || lines <= 0 {
			return model.Intent{}, usage("lines must be a positive integer, got %q", args[2])
		}
		intent.Lines = lines
	}
	return intent, nil
}

func (p *Interpreter) parseDescribe(args []string) (model.Intent, error) {
	if len(args) < 2 || len(args) > 3 {
		return model.Intent{}, usage("usage: describe pod|deployment <name> [namespace]")
	}
	var kind model.IntentKind
	switch strings.ToLower(args[0]) {
	case "pod":
		kind = model.IntentDescribePod
	case "deployment":
		kind = model.IntentDescribeDeployment
	default:
		return model.Intent{}, usage("describe supports pod or deployment, got %q", args[0])
	}
	if err := validName(args[0], args[1]); err != nil {
		return model.Intent{}, err
	}
	intent := model.Intent{Kind: kind, Name: args[1], Namespace: p.defaultNamespace}
	if len(args) == 3 {
		ns, err := validNamespace(args[2])
		if err != nil {
			return model.Intent{}, err
		}
		intent.Namespace = ns
	}
	return intent, nil
}

func (p *Interpreter) parseExec(kind model.IntentKind, verb string, args []string) (model.Intent, error) {
	if len(args) < 3 {
		return model.Intent{}, usage("usage: %s <pod> <namespace> <command...>", verb)
	}
	if err := validName("pod", args[0]); err != nil {
		return model.Intent{}, err
	}
	ns, err := validNamespace(args[1])
	if err != nil {
		return model.Intent{}, err
	}
	return model.Intent{Kind: kind, Name: args[0], Namespace: ns, Command: args[2:]}, nil
}

func (p *Interpreter) parseScale(args []string) (model.Intent, error) {
	if len(args) != 4 {
		return model.Intent{}, usage("usage: scale deployment|machineset <name> <namespace> <replicas>")
	}
	var kind model.IntentKind
	switch strings.ToLower(args[0]) {
	case "deployment":
		kind = model.IntentScaleDeployment
	case "machineset":
		kind = model.IntentScaleMachineSet
	default:
		return model.Intent{}, usage("scale supports deployment or machineset, got %q", args[0])
	}
	if err := validName(args[0], args[1]); err != nil {
		return model.Intent{}, err
	}
	ns, err := validNamespace(args[2])
	if err != nil {
		return model.Intent{}, err
	}
	replicas, err := strconv.ParseInt(args[3], 10, 32)
	if err != nil || replicas < 0 {
		return model.Intent{}, usage("replicas must be a non-negative integer, got %q", args[3])
	}
	return model.Intent{Kind: kind, Name: args[1], Namespace: ns, Replicas: int32(replicas)}, nil
}

func (p *Interpreter) parseApply(args []string, body string) (model.Intent, error) {
	dryRun := false
	switch {
	case len(args) == 0:
	case len(args) == 1 && args[0] == "dry-run":
		dryRun = true
	default:
		return model.Intent{}, usage("usage: apply [dry-run] followed by the manifest on the next line")
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return model.Intent{}, usage("apply needs a YAML manifest on the lines after the command")
	}
	return model.Intent{Kind: model.IntentApplyManifest, Manifest: body, DryRun: dryRun}, nil
}

func (p *Interpreter) parseCopy(args []string) (model.Intent, error) {
	if len(args) != 3 {
		return model.Intent{}, usage("usage: cp <pod> <namespace> <path>")
	}
	if err := validName("pod", args[0]); err != nil {
		return model.Intent{}, err
	}
	ns, err := validNamespace(args[1])
	if err != nil {
		return model.Intent{}, err
	}
	if !strings.HasPrefix(args[2], "/") {
		return model.Intent{}, usage("path must be absolute, got %q", args[2])
	}
	return model.Intent{Kind: model.IntentCopyFile, Name: args[0], Namespace: ns, Path: args[2]}, nil
}

func validNamespace(ns string) (string, error) {
	if !dns1123Label.MatchString(ns) {
		return "", usage("invalid namespace %q", ns)
	}
	return ns, nil
}

func validName(what, name string) error {
	if !dns1123Label.MatchString(name) {
		return usage("invalid %s name %q", what, name)
	}
	return nil
}
