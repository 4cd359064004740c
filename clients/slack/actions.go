package slack

import (
	"errors"
	"fmt"
	"strings"

	"github.com/slack-go/slack"

	"chatrouter/models"
)

const actionIDSeparator = ":"

// ActionID encodes a button as "name:value". Slack requires action ids to be unique within
// a block, and buttons of one prompt usually share a name.
func ActionID(name, value string) string {
	return name + actionIDSeparator + value
}

// ErrIncompletePayload is returned when an interaction lacks a field the router needs
var ErrIncompletePayload = errors.New("incomplete interaction payload")

// ActionFromCallback decodes a button click. Legacy attachment actions use name/value,
// block actions use an action_id of the form "name:value" with the block id standing in for
// the callback id.
func ActionFromCallback(callback slack.InteractionCallback) (models.Action, error) {
	action := models.Action{
		UserID:     callback.User.ID,
		ChannelID:  callback.Channel.ID,
		MessageTS:  firstNonEmpty(callback.MessageTs, callback.Container.MessageTs, callback.Message.Timestamp),
		CallbackID: callback.CallbackID,
	}

	switch {
	case len(callback.ActionCallback.AttachmentActions) > 0:
		a := callback.ActionCallback.AttachmentActions[0]
		action.ActionName = a.Name
		action.ActionValue = a.Value
		if action.ActionValue == "" && len(a.SelectedOptions) > 0 {
			action.ActionValue = a.SelectedOptions[0].Value
		}
	case len(callback.ActionCallback.BlockActions) > 0:
		a := callback.ActionCallback.BlockActions[0]
		name, idValue, _ := strings.Cut(a.ActionID, actionIDSeparator)
		action.ActionName = name
		action.ActionValue = firstNonEmpty(a.Value, a.SelectedOption.Value, idValue)
		action.CallbackID = firstNonEmpty(action.CallbackID, a.BlockID)
	}

	for field, value := range map[string]string{
		"user.id":      action.UserID,
		"channel.id":   action.ChannelID,
		"message_ts":   action.MessageTS,
		"action name":  action.ActionName,
		"action value": action.ActionValue,
		"callback_id":  action.CallbackID,
	} {
		if value == "" {
			return models.Action{}, fmt.Errorf("%w: missing %s", ErrIncompletePayload, field)
		}
	}

	return action, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
