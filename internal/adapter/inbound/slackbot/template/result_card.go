package template

import (
	"fmt"

	"github.com/jonny/kubot/internal/domain/model"
	slackapi "github.com/slack-go/slack"
)

// Payloads beyond this many characters are truncated before rendering so a
// large listing never breaks Slack's 3000 character text limit.
const maxPayloadChars = 2800

// BuildResultBlocks renders an execution result as Block Kit blocks. The
// payload is fenced as a code block so tabular command output keeps its
// alignment.
func BuildResultBlocks(res model.Result) []slackapi.Block {
	header := slackapi.NewSectionBlock(
		slackapi.NewTextBlockObject(slackapi.MarkdownType, statusLine(res), false, false),
		nil, nil,
	)

	blocks := []slackapi.Block{header}

	if res.Payload != "" {
		body := slackapi.NewSectionBlock(
			slackapi.NewTextBlockObject(slackapi.MarkdownType,
				fmt.Sprintf("```%s```", truncate(res.Payload, maxPayloadChars)), false, false),
			nil, nil,
		)
		blocks = append(blocks, body)
	}

	if res.Detail != "" {
		detail := slackapi.NewContextBlock("",
			slackapi.NewTextBlockObject(slackapi.MarkdownType, res.Detail, false, false),
		)
		blocks = append(blocks, detail)
	}

	return blocks
}

func statusLine(res model.Result) string {
	switch res.Status {
	case model.ResultSuccess:
		return ":white_check_mark: *Done*"
	case model.ResultPartialFailure:
		return ":warning: *Completed with errors*"
	default:
		return fmt.Sprintf(":x: *Failed* (%s)\n%s", res.Kind, res.Message)
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "\n... (truncated)"
}
