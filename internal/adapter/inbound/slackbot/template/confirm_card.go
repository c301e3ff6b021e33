package template

import (
	"fmt"

	slackapi "github.com/slack-go/slack"
)

const (
	ActionIDConfirm = "confirm_execute"
	ActionIDCancel  = "confirm_cancel"
)

// BuildConfirmBlocks constructs Block Kit blocks prompting the user to
// confirm a destructive command. The confirm button carries the literal
// confirmation token so a click is processed like a typed reply.
func BuildConfirmBlocks(prompt, token string) []slackapi.Block {
	header := slackapi.NewSectionBlock(
		slackapi.NewTextBlockObject(slackapi.MarkdownType,
			":warning: *Confirmation Required*", false, false),
		nil, nil,
	)

	promptBlock := slackapi.NewSectionBlock(
		slackapi.NewTextBlockObject(slackapi.MarkdownType, prompt, false, false),
		nil, nil,
	)

	confirmBtn := slackapi.NewButtonBlockElement(
		ActionIDConfirm,
		token,
		slackapi.NewTextBlockObject(slackapi.PlainTextType,
			fmt.Sprintf("Confirm (%s)", token), false, false),
	)
	confirmBtn.Style = slackapi.StylePrimary

	cancelBtn := slackapi.NewButtonBlockElement(
		ActionIDCancel,
		"cancel",
		slackapi.NewTextBlockObject(slackapi.PlainTextType, "Cancel", false, false),
	)
	cancelBtn.Style = slackapi.StyleDanger

	actionBlock := slackapi.NewActionBlock("",
		confirmBtn,
		cancelBtn,
	)

	return []slackapi.Block{header, promptBlock, slackapi.NewDividerBlock(), actionBlock}
}
