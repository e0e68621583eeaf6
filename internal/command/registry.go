package command

// Registry maps command names to commands, keeping registration order for
// help output. It is built once at startup and then only read.
type Registry struct {
	order    []string
	commands map[string]Command
}

// NewRegistry creates a registry and registers cmds in order.
func NewRegistry(cmds ...Command) *Registry {
	r := &Registry{commands: make(map[string]Command)}
	for _, c := range cmds {
		r.Register(c)
	}
	return r
}

// Register adds c under its name. A later command with the same name
// replaces the earlier one but keeps its position in the listing.
func (r *Registry) Register(c Command) {
	name := c.Name()
	if _, exists := r.commands[name]; !exists {
		r.order = append(r.order, name)
	}
	r.commands[name] = c
}

// Resolve returns the command registered under name.
func (r *Registry) Resolve(name string) (Command, bool) {
	c, ok := r.commands[name]
	return c, ok
}

// Commands returns the registered commands in registration order.
func (r *Registry) Commands() []Command {
	out := make([]Command, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.commands[name])
	}
	return out
}

// Descriptions returns name -> description for help rendering.
func (r *Registry) Descriptions() map[string]string {
	out := make(map[string]string, len(r.commands))
	for name, c := range r.commands {
		out[name] = c.Description()
	}
	return out
}
