package skills

// Localizer resolves label keys to display text.
type Localizer interface {
	Localize(key string) string
}

// Resolver adapts a registry and a localizer to the label lookup that roll
// prompts need.
type Resolver struct {
	registry  *Registry
	localizer Localizer
}

// NewResolver builds a resolver over the given registry. A nil registry
// falls back to the embedded default.
func NewResolver(registry *Registry, localizer Localizer) *Resolver {
	if registry == nil {
		registry = Default()
	}
	return &Resolver{registry: registry, localizer: localizer}
}

// Resolve returns the localized label for a skill id. The second return is
// false for unregistered ids.
func (r *Resolver) Resolve(id string) (string, bool) {
	skill, err := r.registry.Get(id)
	if err != nil {
		return "", false
	}
	if r.localizer == nil {
		return skill.LabelKey, true
	}
	return r.localizer.Localize(skill.LabelKey), true
}
