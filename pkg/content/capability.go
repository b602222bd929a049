package content

// Capability is one platform feature: a home page card and a detail page.
type Capability struct {
	ID       string `yaml:"id" json:"id"`
	Title    string `yaml:"title" json:"title"`
	Subtitle string `yaml:"subtitle" json:"subtitle"`
	Icon     string `yaml:"icon" json:"icon"`   // short mnemonic shown in the card badge
	Color    string `yaml:"color" json:"color"` // accent color name, see Accent
	Summary  string `yaml:"summary" json:"summary"`

	// Diagram is mermaid source for the detail page.
	Diagram string `yaml:"diagram" json:"diagram"`

	Details         []string  `yaml:"details" json:"details"`
	Commands        []Command `yaml:"commands" json:"commands"`
	ManifestExample string    `yaml:"manifest_example,omitempty" json:"manifest_example,omitempty"`
}

// Command is a CLI invocation with a one-line description.
type Command struct {
	Cmd  string `yaml:"cmd" json:"cmd"`
	Desc string `yaml:"desc" json:"desc"`
}
