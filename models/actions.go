package models

// ActionButton is one clickable button. Clicking it produces an Action with
// ActionName = Name and ActionValue = Value.
type ActionButton struct {
	Name  string
	Text  string
	Value string
}

// ActionPrompt is a message carrying interactive buttons.
type ActionPrompt struct {
	CallbackID string
	Title      string
	Text       string
	Buttons    []ActionButton
}
