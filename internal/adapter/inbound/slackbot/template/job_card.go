package template

import (
	"fmt"
	"time"

	"github.com/jonny/kubot/internal/domain/model"
	slackapi "github.com/slack-go/slack"
)

const timeRounding = 100 * time.Millisecond

// BuildJobBlocks renders the completion notification for a background job.
func BuildJobBlocks(job model.AsyncJob) []slackapi.Block {
	header := slackapi.NewSectionBlock(
		slackapi.NewTextBlockObject(slackapi.MarkdownType,
			fmt.Sprintf("%s *Job `%s` %s*", jobEmoji(job.Status), job.ID, job.Status), false, false),
		nil, nil,
	)

	meta := slackapi.NewContextBlock("",
		slackapi.NewTextBlockObject(slackapi.MarkdownType,
			fmt.Sprintf("requested by <@%s> · ran %s", job.UserID, job.Duration().Round(timeRounding)), false, false),
	)

	blocks := []slackapi.Block{header, meta}
	return append(blocks, BuildResultBlocks(job.Result)...)
}

func jobEmoji(status model.JobStatus) string {
	switch status {
	case model.JobCompleted:
		return ":white_check_mark:"
	case model.JobTimedOut:
		return ":hourglass:"
	default:
		return ":x:"
	}
}
