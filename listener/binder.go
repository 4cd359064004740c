package listener

import (
	"context"
	"fmt"
	"reflect"

	"github.com/samber/mo"

	"chatrouter/models"
)

// binder extracts one argument from an invocation. Binders are built once at registration.
type binder func(ctx context.Context, inv *InvocationContext) reflect.Value

var (
	contextType   = reflect.TypeOf((*context.Context)(nil)).Elem()
	eventType     = reflect.TypeOf((*models.Event)(nil)).Elem()
	stringType    = reflect.TypeOf("")
	optStringType = reflect.TypeOf(mo.Option[string]{})
)

// concreteEventType is the event struct a handler of category c receives.
func concreteEventType(c models.Category) reflect.Type {
	switch c {
	case models.CategoryMessage:
		return reflect.TypeOf(models.TextMessage{})
	case models.CategoryThreadMessage:
		return reflect.TypeOf(models.ThreadMessage{})
	case models.CategoryReaction:
		return reflect.TypeOf(models.Reaction{})
	case models.CategoryAction:
		return reflect.TypeOf(models.Action{})
	default:
		return nil
	}
}

func bindParam(category models.Category, rule MatchRule, p Param, t reflect.Type) (binder, error) {
	switch p.Role {
	case RoleAuto:
		return bindByType(category, t)
	case RoleFullEvent:
		if !concreteEventType(category).AssignableTo(t) {
			return nil, fmt.Errorf("%s event cannot be assigned to %s", category, t)
		}
		return bindEvent, nil
	case RoleUserID:
		return bindString(t, p, func(inv *InvocationContext) mo.Option[string] {
			return mo.Some(inv.UserID)
		})
	case RoleMessageContent:
		return bindString(t, p, func(inv *InvocationContext) mo.Option[string] {
			return inv.Text
		})
	case RoleChannelID:
		return bindString(t, p, func(inv *InvocationContext) mo.Option[string] {
			return mo.Some(inv.Event.Channel())
		})
	case RoleThreadID:
		return bindString(t, p, func(inv *InvocationContext) mo.Option[string] {
			return inv.ThreadID
		})
	case RoleRegexGroup:
		if p.Group < 0 {
			return nil, fmt.Errorf("negative regex group %d", p.Group)
		}
		if rule.Pattern != nil && p.Group > rule.Pattern.NumSubexp() {
			return nil, fmt.Errorf("regex group %d out of range, pattern %q has %d groups",
				p.Group, rule.Pattern.String(), rule.Pattern.NumSubexp())
		}
		group := p.Group
		return bindString(t, p, func(inv *InvocationContext) mo.Option[string] {
			return inv.Group(group)
		})
	default:
		return nil, fmt.Errorf("unknown parameter role %s", p.Role)
	}
}

// bindByType resolves an untagged parameter. Only the context and the event itself qualify.
func bindByType(category models.Category, t reflect.Type) (binder, error) {
	switch {
	case t == contextType:
		return func(ctx context.Context, _ *InvocationContext) reflect.Value {
			return reflect.ValueOf(&ctx).Elem()
		}, nil
	case t == eventType || t == concreteEventType(category):
		return bindEvent, nil
	default:
		return nil, fmt.Errorf("cannot resolve untagged parameter of type %s", t)
	}
}

func bindEvent(_ context.Context, inv *InvocationContext) reflect.Value {
	return reflect.ValueOf(inv.Event)
}

// bindString adapts a nullable extraction to a string (null as "") or mo.Option[string] parameter.
func bindString(t reflect.Type, p Param, extract func(*InvocationContext) mo.Option[string]) (binder, error) {
	switch t {
	case stringType:
		return func(_ context.Context, inv *InvocationContext) reflect.Value {
			return reflect.ValueOf(extract(inv).OrEmpty())
		}, nil
	case optStringType:
		return func(_ context.Context, inv *InvocationContext) reflect.Value {
			return reflect.ValueOf(extract(inv))
		}, nil
	default:
		return nil, fmt.Errorf("%s needs a string or mo.Option[string] parameter, got %s", p, t)
	}
}
