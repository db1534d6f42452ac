package bot

import (
	"fmt"
	"strconv"
	"strings"
)

// Callback actions carried in inline keyboard data. Every piece of
// callback data names the original file message so taps route to the
// right session even with several uploads in flight in one chat.
const (
	actionSearch = "search"
	actionEdit   = "edit"
	actionCancel = "cancel"
	actionChoose = "movie"
	actionNone   = "none"
)

// callbackData is a decoded inline keyboard payload.
type callbackData struct {
	Action    string
	MessageID int
	// Index is the candidate position for actionChoose, -1 otherwise.
	Index int
}

// encodeCallback builds "action:messageID" payloads.
func encodeCallback(action string, messageID int) string {
	return fmt.Sprintf("%s:%d", action, messageID)
}

// encodeChoice builds "movie:messageID:index" payloads.
func encodeChoice(messageID, index int) string {
	return fmt.Sprintf("%s:%d:%d", actionChoose, messageID, index)
}

// parseCallback decodes inline keyboard data.
func parseCallback(data string) (callbackData, error) {
	parts := strings.Split(data, ":")
	if len(parts) < 2 {
		return callbackData{}, fmt.Errorf("malformed callback data %q", data)
	}

	action := parts[0]
	switch action {
	case actionSearch, actionEdit, actionCancel, actionNone:
		if len(parts) != 2 {
			return callbackData{}, fmt.Errorf("malformed callback data %q", data)
		}
	case actionChoose:
		if len(parts) != 3 {
			return callbackData{}, fmt.Errorf("malformed callback data %q", data)
		}
	default:
		return callbackData{}, fmt.Errorf("unknown callback action %q", action)
	}

	messageID, err := strconv.Atoi(parts[1])
	if err != nil {
		return callbackData{}, fmt.Errorf("bad message id in callback data %q", data)
	}

	cb := callbackData{Action: action, MessageID: messageID, Index: -1}
	if action == actionChoose {
		index, err := strconv.Atoi(parts[2])
		if err != nil {
			return callbackData{}, fmt.Errorf("bad index in callback data %q", data)
		}
		cb.Index = index
	}
	return cb, nil
}
