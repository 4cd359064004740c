package listener

import (
	"chatrouter/models"
)

// Declaration is one entry of a controller's handler table. Build it with OnMessage,
// OnThreadMessage, OnReaction, OnReactionRemoved or OnAction.
type Declaration struct {
	// Name identifies the handler in logs and registration errors. Defaults to the function name.
	Name     string
	Category models.Category

	// Pattern must match the whole message text (message and thread handlers)
	Pattern string

	Reaction     string
	ReactionKind models.ReactionKind

	// ActionValue "*" accepts any value for ActionName
	ActionName  string
	ActionValue string

	// SendTyping sends a typing indicator right before a message handler runs
	SendTyping bool

	// Params lists one role per parameter of Func. Nil means every parameter is bound by type.
	Params []Param

	// Func is the target, usually a method value bound to its controller
	Func any
}

// Controller is a handler-bearing component.
type Controller interface {
	Listeners() []Declaration
}

// ControllerFunc adapts a plain function to Controller.
type ControllerFunc func() []Declaration

func (f ControllerFunc) Listeners() []Declaration {
	return f()
}

const AnyValue = "*"

func OnMessage(pattern string, fn any) Declaration {
	return Declaration{Category: models.CategoryMessage, Pattern: pattern, Func: fn}
}

func OnThreadMessage(pattern string, fn any) Declaration {
	return Declaration{Category: models.CategoryThreadMessage, Pattern: pattern, Func: fn}
}

func OnReaction(code string, fn any) Declaration {
	return Declaration{Category: models.CategoryReaction, Reaction: code, ReactionKind: models.ReactionAdded, Func: fn}
}

func OnReactionRemoved(code string, fn any) Declaration {
	return Declaration{Category: models.CategoryReaction, Reaction: code, ReactionKind: models.ReactionRemoved, Func: fn}
}

// OnAction matches clicks on buttons named name. An empty value is treated as AnyValue.
func OnAction(name, value string, fn any) Declaration {
	if value == "" {
		value = AnyValue
	}
	return Declaration{Category: models.CategoryAction, ActionName: name, ActionValue: value, Func: fn}
}

func (d Declaration) WithParams(params ...Param) Declaration {
	d.Params = append([]Param(nil), params...)
	return d
}

func (d Declaration) WithTyping() Declaration {
	d.SendTyping = true
	return d
}

func (d Declaration) Named(name string) Declaration {
	d.Name = name
	return d
}
