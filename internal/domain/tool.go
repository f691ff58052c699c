package domain

// ToolDescriptor is the read contract the runtime consumes from the
// surrounding tool abstraction. The runtime only needs a name for error
// reporting and the capability tags a worker must declare to run the tool.
type ToolDescriptor interface {
	Name() string
	RequiredCapabilities() []string
}

// ToolSpec is a plain descriptor for tools declared via configuration
type ToolSpec struct {
	ToolName     string   `json:"name"`
	Capabilities []string `json:"required_capabilities"`
}

func (t ToolSpec) Name() string {
	return t.ToolName
}

func (t ToolSpec) RequiredCapabilities() []string {
	return t.Capabilities
}
