package builder

import "strings"

// Action identifies one sub-editor of the builder. Wire custom IDs carry the
// action name, never the other way around: control flow dispatches on the
// parsed Action, not on string prefixes.
type Action int

const (
	ActionUnknown Action = iota
	ActionTitle
	ActionDescription
	ActionAuthor
	ActionFooter
	ActionColor
	ActionThumbnail
	ActionImage
	ActionTimestamp
	ActionAddField
	ActionRemoveField
	ActionAddLink
	ActionRemoveLink
	ActionTogglePings
	ActionAboveText
	ActionAboveImage
	ActionSaveTemplate
	ActionLoadTemplate
	ActionDeleteTemplate
	ActionPost
	ActionCancel
)

var actionNames = map[Action]string{
	ActionTitle:          "title",
	ActionDescription:    "description",
	ActionAuthor:         "author",
	ActionFooter:         "footer",
	ActionColor:          "color",
	ActionThumbnail:      "thumbnail",
	ActionImage:          "image",
	ActionTimestamp:      "timestamp",
	ActionAddField:       "addfield",
	ActionRemoveField:    "removefield",
	ActionAddLink:        "addlink",
	ActionRemoveLink:     "removelink",
	ActionTogglePings:    "pings",
	ActionAboveText:      "abovetext",
	ActionAboveImage:     "aboveimage",
	ActionSaveTemplate:   "savetpl",
	ActionLoadTemplate:   "loadtpl",
	ActionDeleteTemplate: "deltpl",
	ActionPost:           "post",
	ActionCancel:         "cancel",
}

var actionsByName = func() map[string]Action {
	byName := make(map[string]Action, len(actionNames))
	for action, name := range actionNames {
		byName[name] = action
	}
	return byName
}()

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "unknown"
}

func ParseAction(name string) (Action, bool) {
	action, ok := actionsByName[name]
	return action, ok
}

// ModalAction reports whether the action opens a modal form. The remaining
// actions either mutate immediately or open a select menu.
func (a Action) ModalAction() bool {
	switch a {
	case ActionTitle, ActionDescription, ActionAuthor, ActionFooter, ActionColor,
		ActionThumbnail, ActionImage, ActionAddField, ActionAddLink,
		ActionAboveText, ActionAboveImage, ActionSaveTemplate:
		return true
	default:
		return false
	}
}

// Custom ID wire format. Buttons: drako:<action>:<userID>. Modals and select
// menus add a per-session sequence so resolved waits can be matched exactly.
const customIDPrefix = "drako"

func ButtonID(action Action, userID string) string {
	return customIDPrefix + ":" + action.String() + ":" + userID
}

func WaitID(action Action, userID, seq string) string {
	return customIDPrefix + ":" + action.String() + ":" + userID + ":" + seq
}

// ParseID decodes either wire form, returning the action, owner user ID,
// and the sequence (empty for plain button IDs).
func ParseID(customID string) (Action, string, string, bool) {
	parts := strings.Split(customID, ":")
	if len(parts) < 3 || parts[0] != customIDPrefix {
		return ActionUnknown, "", "", false
	}
	action, ok := ParseAction(parts[1])
	if !ok {
		return ActionUnknown, "", "", false
	}
	seq := ""
	if len(parts) > 3 {
		seq = parts[3]
	}
	return action, parts[2], seq, true
}
