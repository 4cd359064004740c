package listener

import "fmt"

type ParamRole int

const (
	// RoleAuto binds by declared type: context.Context or the event type
	RoleAuto ParamRole = iota
	RoleUserID
	RoleMessageContent
	RoleChannelID
	RoleThreadID
	RoleRegexGroup
	RoleFullEvent
)

func (r ParamRole) String() string {
	switch r {
	case RoleAuto:
		return "auto"
	case RoleUserID:
		return "user_id"
	case RoleMessageContent:
		return "message_content"
	case RoleChannelID:
		return "channel_id"
	case RoleThreadID:
		return "thread_id"
	case RoleRegexGroup:
		return "regex_group"
	case RoleFullEvent:
		return "full_event"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

type Param struct {
	Role  ParamRole
	Group int
}

func (p Param) String() string {
	if p.Role == RoleRegexGroup {
		return fmt.Sprintf("regex_group(%d)", p.Group)
	}
	return p.Role.String()
}

func Auto() Param           { return Param{Role: RoleAuto} }
func UserID() Param         { return Param{Role: RoleUserID} }
func MessageContent() Param { return Param{Role: RoleMessageContent} }
func ChannelID() Param      { return Param{Role: RoleChannelID} }
func ThreadID() Param       { return Param{Role: RoleThreadID} }
func FullEvent() Param      { return Param{Role: RoleFullEvent} }

// RegexGroup binds capture group n of the active pattern match; 0 is the whole text.
func RegexGroup(n int) Param {
	return Param{Role: RoleRegexGroup, Group: n}
}
