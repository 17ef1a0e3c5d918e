package storyargs

// Control type and type name emitted for string-literal unions.
const (
	ControlSelect = "select"
	TypeEnum      = "enum"
)

// ArgDescriptor is one story argument, shaped like a Storybook argType.
type ArgDescriptor struct {
	Name        string   `json:"name"`
	Type        ArgType  `json:"type"`
	Description *string  `json:"description,omitempty"`
	Control     *Control `json:"control,omitempty"`
}

// ArgType is the type of a story argument.
type ArgType struct {
	Name     string `json:"name"`
	Required bool   `json:"required"`
}

// Control tells the story renderer which input widget to offer.
type Control struct {
	Type    string   `json:"type"`
	Options []string `json:"options"`
}
