package template_test

import (
	"strings"
	"testing"

	"github.com/jonny/kubot/internal/adapter/inbound/slackbot/template"
	"github.com/jonny/kubot/internal/domain/model"
	slackapi "github.com/slack-go/slack"
)

func TestBuildResultBlocks_Success(t *testing.T) {
	res := model.Success("NAME   READY\nweb    1/1")

	blocks := template.BuildResultBlocks(res)

	if len(blocks) < 2 {
		t.Fatalf("expected header and payload blocks, got %d", len(blocks))
	}

	header, ok := blocks[0].(*slackapi.SectionBlock)
	if !ok {
		t.Fatalf("expected SectionBlock header, got %T", blocks[0])
	}
	if !containsString(header.Text.Text, "Done") {
		t.Errorf("expected success header, got: %s", header.Text.Text)
	}

	body, ok := blocks[1].(*slackapi.SectionBlock)
	if !ok {
		t.Fatalf("expected SectionBlock payload, got %T", blocks[1])
	}
	if !containsString(body.Text.Text, "web    1/1") {
		t.Errorf("expected payload in code block, got: %s", body.Text.Text)
	}
	if !strings.HasPrefix(body.Text.Text, "```") {
		t.Errorf("payload should be fenced, got: %s", body.Text.Text)
	}
}

func TestBuildResultBlocks_FailureShowsKindAndMessage(t *testing.T) {
	res := model.Failure(model.ErrClusterNotFound, "pods \"web\" not found")

	blocks := template.BuildResultBlocks(res)

	header := blocks[0].(*slackapi.SectionBlock)
	if !containsString(header.Text.Text, "cluster_not_found") {
		t.Errorf("expected error kind in header, got: %s", header.Text.Text)
	}
	if !containsString(header.Text.Text, "not found") {
		t.Errorf("expected message in header, got: %s", header.Text.Text)
	}
	if len(blocks) != 1 {
		t.Errorf("failure without payload should render a single block, got %d", len(blocks))
	}
}

func TestBuildResultBlocks_PartialFailureHasDetail(t *testing.T) {
	res := model.PartialFailure("applied deployment/web", "service/web: forbidden")

	blocks := template.BuildResultBlocks(res)

	detailFound := false
	for _, b := range blocks {
		ctx, ok := b.(*slackapi.ContextBlock)
		if !ok {
			continue
		}
		for _, el := range ctx.ContextElements.Elements {
			txt, ok := el.(*slackapi.TextBlockObject)
			if ok && containsString(txt.Text, "forbidden") {
				detailFound = true
			}
		}
	}
	if !detailFound {
		t.Error("expected detail in a context block")
	}
}

func TestBuildResultBlocks_TruncatesLongPayload(t *testing.T) {
	res := model.Success(strings.Repeat("x", 5000))

	blocks := template.BuildResultBlocks(res)

	body := blocks[1].(*slackapi.SectionBlock)
	if len(body.Text.Text) > 3000 {
		t.Errorf("payload block exceeds Slack text limit: %d chars", len(body.Text.Text))
	}
	if !containsString(body.Text.Text, "truncated") {
		t.Error("expected truncation marker")
	}
}

func TestBuildJobBlocks_Completed(t *testing.T) {
	job := model.NewAsyncJob("U123", "C456", model.Intent{Kind: model.IntentExecAsync})
	job = job.WithResult(model.Success("done"))

	blocks := template.BuildJobBlocks(job)

	header := blocks[0].(*slackapi.SectionBlock)
	if !containsString(header.Text.Text, job.ID) {
		t.Errorf("expected job ID in header, got: %s", header.Text.Text)
	}
	if !containsString(header.Text.Text, "completed") {
		t.Errorf("expected status in header, got: %s", header.Text.Text)
	}

	metaFound := false
	for _, b := range blocks {
		ctx, ok := b.(*slackapi.ContextBlock)
		if !ok {
			continue
		}
		for _, el := range ctx.ContextElements.Elements {
			txt, ok := el.(*slackapi.TextBlockObject)
			if ok && containsString(txt.Text, "U123") {
				metaFound = true
			}
		}
	}
	if !metaFound {
		t.Error("expected requesting user in context block")
	}
}

func TestBuildJobBlocks_TimedOut(t *testing.T) {
	job := model.NewAsyncJob("U123", "C456", model.Intent{Kind: model.IntentExecAsync})
	job = job.WithResult(model.Failure(model.ErrTimeout, "deadline exceeded"))

	blocks := template.BuildJobBlocks(job)

	header := blocks[0].(*slackapi.SectionBlock)
	if !containsString(header.Text.Text, "timed_out") {
		t.Errorf("expected timed_out status, got: %s", header.Text.Text)
	}
}
