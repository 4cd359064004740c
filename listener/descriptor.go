package listener

import (
	"context"
	"fmt"
	"reflect"
	"regexp"
	"runtime"

	"github.com/samber/mo"

	"chatrouter/models"
)

var (
	errorType    = reflect.TypeOf((*error)(nil)).Elem()
	responseType = reflect.TypeOf(models.Response{})
)

// RegistrationError reports a handler that cannot be registered. It is a programming error.
type RegistrationError struct {
	Handler string
	Err     error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("bad definition of the listener %s: %v", e.Handler, e.Err)
}

func (e *RegistrationError) Unwrap() error {
	return e.Err
}

// MatchRule decides whether a descriptor applies to an event of its category.
type MatchRule struct {
	Pattern      *regexp.Regexp
	Reaction     string
	ReactionKind models.ReactionKind
	ActionName   string
	ActionValue  string
}

// Descriptor is the compiled, immutable form of a Declaration.
type Descriptor struct {
	name       string
	category   models.Category
	rule       MatchRule
	sendTyping bool
	plan       []binder
	target     reflect.Value
	results    func([]reflect.Value) (models.Response, error)
}

// Compile validates decl and resolves its parameter plan. Any problem is a *RegistrationError.
func Compile(decl Declaration) (*Descriptor, error) {
	fn := reflect.ValueOf(decl.Func)
	name := decl.Name
	if name == "" {
		name = funcName(fn)
	}

	fail := func(format string, args ...any) (*Descriptor, error) {
		return nil, &RegistrationError{Handler: name, Err: fmt.Errorf(format, args...)}
	}

	if !fn.IsValid() || fn.Kind() != reflect.Func || fn.IsNil() {
		return fail("target is not a function: %T", decl.Func)
	}
	fnType := fn.Type()
	if fnType.IsVariadic() {
		return fail("variadic targets are not supported")
	}

	rule, err := compileRule(decl)
	if err != nil {
		return fail("%w", err)
	}

	params := decl.Params
	if params == nil {
		params = make([]Param, fnType.NumIn())
	}
	if len(params) != fnType.NumIn() {
		return fail("%d parameter roles declared for %d parameters", len(params), fnType.NumIn())
	}

	plan := make([]binder, len(params))
	for i, p := range params {
		b, err := bindParam(decl.Category, rule, p, fnType.In(i))
		if err != nil {
			return fail("parameter %d: %w", i, err)
		}
		plan[i] = b
	}

	results, err := resultAdapter(fnType)
	if err != nil {
		return fail("%w", err)
	}

	return &Descriptor{
		name:       name,
		category:   decl.Category,
		rule:       rule,
		sendTyping: decl.SendTyping && decl.Category == models.CategoryMessage,
		plan:       plan,
		target:     fn,
		results:    results,
	}, nil
}

func compileRule(decl Declaration) (MatchRule, error) {
	switch decl.Category {
	case models.CategoryMessage, models.CategoryThreadMessage:
		if decl.Pattern == "" {
			return MatchRule{}, fmt.Errorf("pattern is required for %s handlers", decl.Category)
		}
		// Anchored so that the whole text has to match, not just a substring
		pattern, err := regexp.Compile(`^(?:` + decl.Pattern + `)$`)
		if err != nil {
			return MatchRule{}, fmt.Errorf("invalid pattern %q: %w", decl.Pattern, err)
		}
		return MatchRule{Pattern: pattern}, nil
	case models.CategoryReaction:
		if decl.Reaction == "" {
			return MatchRule{}, fmt.Errorf("reaction code is required")
		}
		return MatchRule{Reaction: decl.Reaction, ReactionKind: decl.ReactionKind}, nil
	case models.CategoryAction:
		if decl.ActionName == "" {
			return MatchRule{}, fmt.Errorf("action name is required")
		}
		value := decl.ActionValue
		if value == "" {
			value = AnyValue
		}
		return MatchRule{ActionName: decl.ActionName, ActionValue: value}, nil
	default:
		return MatchRule{}, fmt.Errorf("unknown category %d", int(decl.Category))
	}
}

func resultAdapter(fnType reflect.Type) (func([]reflect.Value) (models.Response, error), error) {
	switch {
	case fnType.NumOut() == 0:
		return func([]reflect.Value) (models.Response, error) {
			return models.NoResponse(), nil
		}, nil
	case fnType.NumOut() == 1 && fnType.Out(0) == errorType:
		return func(out []reflect.Value) (models.Response, error) {
			return models.NoResponse(), asError(out[0])
		}, nil
	case fnType.NumOut() == 1 && fnType.Out(0) == responseType:
		return func(out []reflect.Value) (models.Response, error) {
			return out[0].Interface().(models.Response), nil
		}, nil
	case fnType.NumOut() == 2 && fnType.Out(0) == responseType && fnType.Out(1) == errorType:
		return func(out []reflect.Value) (models.Response, error) {
			return out[0].Interface().(models.Response), asError(out[1])
		}, nil
	default:
		return nil, fmt.Errorf("unsupported return type, want none, error, models.Response or (models.Response, error)")
	}
}

func asError(v reflect.Value) error {
	if v.IsNil() {
		return nil
	}
	return v.Interface().(error)
}

func funcName(fn reflect.Value) string {
	if !fn.IsValid() || fn.Kind() != reflect.Func || fn.IsNil() {
		return "<invalid>"
	}
	if f := runtime.FuncForPC(fn.Pointer()); f != nil {
		return f.Name()
	}
	return "<unknown>"
}

func (d *Descriptor) Name() string              { return d.name }
func (d *Descriptor) Category() models.Category { return d.category }
func (d *Descriptor) Rule() MatchRule           { return d.rule }
func (d *Descriptor) SendTyping() bool          { return d.sendTyping }
func (d *Descriptor) ParamCount() int           { return len(d.plan) }

// MatchText returns the submatches when the pattern matches the whole text.
func (d *Descriptor) MatchText(text string) ([]mo.Option[string], bool) {
	if d.rule.Pattern == nil {
		return nil, false
	}
	idx := d.rule.Pattern.FindStringSubmatchIndex(text)
	if idx == nil {
		return nil, false
	}
	groups := make([]mo.Option[string], len(idx)/2)
	for i := range groups {
		start, end := idx[2*i], idx[2*i+1]
		if start < 0 {
			groups[i] = mo.None[string]()
			continue
		}
		groups[i] = mo.Some(text[start:end])
	}
	return groups, true
}

// MatchReaction compares the emoji code exactly; "*" has no special meaning here.
func (d *Descriptor) MatchReaction(code string, kind models.ReactionKind) bool {
	return d.category == models.CategoryReaction && d.rule.ReactionKind == kind && d.rule.Reaction == code
}

func (d *Descriptor) MatchAction(name, value string) bool {
	if d.category != models.CategoryAction || d.rule.ActionName != name {
		return false
	}
	return d.rule.ActionValue == AnyValue || d.rule.ActionValue == value
}

// Invoke binds every parameter and calls the target. A panic in the target is returned as an error.
func (d *Descriptor) Invoke(ctx context.Context, inv *InvocationContext) (resp models.Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			resp = models.NoResponse()
			if rErr, ok := r.(error); ok {
				err = fmt.Errorf("handler %s panicked: %w", d.name, rErr)
				return
			}
			err = fmt.Errorf("handler %s panicked: %v", d.name, r)
		}
	}()

	args := make([]reflect.Value, len(d.plan))
	for i, bind := range d.plan {
		args[i] = bind(ctx, inv)
	}

	return d.results(d.target.Call(args))
}
