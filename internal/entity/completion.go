package entity

import "slices"

// Default completion models offered for selection
var DefaultModels = []string{"mistral-large", "llama2-70b-chat"}

// ModelCatalog is the allow-list of completion model identifiers
type ModelCatalog struct {
	models []string
}

func NewModelCatalog(models []string) *ModelCatalog {
	if len(models) == 0 {
		models = DefaultModels
	}
	return &ModelCatalog{models: slices.Clone(models)}
}

func (c *ModelCatalog) Allowed(model string) bool {
	return slices.Contains(c.models, model)
}

func (c *ModelCatalog) Models() []string {
	return slices.Clone(c.models)
}

// Default returns the first model of the allow-list
func (c *ModelCatalog) Default() string {
	return c.models[0]
}

// Next returns the model following current in the allow-list, wrapping around
func (c *ModelCatalog) Next(current string) string {
	idx := slices.Index(c.models, current)
	return c.models[(idx+1)%len(c.models)]
}
