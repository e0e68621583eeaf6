package command

// TypeTag hints how the argument parser should coerce an option value.
type TypeTag string

// Recognized type tags. Anything else is stored as TypeAsIs.
const (
	TypeAsIs     TypeTag = "as-is"
	TypeString   TypeTag = "string"
	TypeInt      TypeTag = "int"
	TypeNumber   TypeTag = "number"
	TypeNum      TypeTag = "num"
	TypeTime     TypeTag = "time"
	TypeSeconds  TypeTag = "seconds"
	TypeSecs     TypeTag = "secs"
	TypeMinutes  TypeTag = "minutes"
	TypeMins     TypeTag = "mins"
	TypeX        TypeTag = "x"
	TypeN        TypeTag = "n"
	TypeDate     TypeTag = "date"
	TypeDatetime TypeTag = "datetime"
	TypeDateTime TypeTag = "date_time"
	TypeFloat    TypeTag = "float"
	TypeDecimal  TypeTag = "decimal"
	TypePath     TypeTag = "path"
	TypeFile     TypeTag = "file"
	TypeDir      TypeTag = "directory"
	TypeDirShort TypeTag = "dir"
	TypeEmail    TypeTag = "email"
	TypeURL      TypeTag = "url"
	TypeURI      TypeTag = "uri"
	TypeDomain   TypeTag = "domain"
	TypeHost     TypeTag = "host"
	TypeIP       TypeTag = "ip"
	TypeBool     TypeTag = "bool"
	TypeBoolean  TypeTag = "boolean"
	TypeOn       TypeTag = "on"
	TypeFalse    TypeTag = "false"
	TypeOff      TypeTag = "off"
)

// Kind is the value family a TypeTag parses into.
type Kind int

const (
	KindString Kind = iota
	KindBool
	KindInt
	KindFloat
)

var typeKinds = map[TypeTag]Kind{
	TypeAsIs: KindString, TypeString: KindString,
	TypeInt: KindInt, TypeNumber: KindFloat, TypeNum: KindFloat,
	TypeTime: KindInt, TypeSeconds: KindInt, TypeSecs: KindInt,
	TypeMinutes: KindInt, TypeMins: KindInt, TypeX: KindInt, TypeN: KindInt,
	TypeDate: KindString, TypeDatetime: KindString, TypeDateTime: KindString,
	TypeFloat: KindFloat, TypeDecimal: KindFloat,
	TypePath: KindString, TypeFile: KindString, TypeDir: KindString, TypeDirShort: KindString,
	TypeEmail: KindString,
	TypeURL: KindString, TypeURI: KindString, TypeDomain: KindString, TypeHost: KindString,
	TypeIP: KindString,
	TypeBool: KindBool, TypeBoolean: KindBool, TypeOn: KindBool,
	TypeFalse: KindBool, TypeOff: KindBool,
}

// ValidTypeTag reports whether t is one of the recognized tags.
func ValidTypeTag(t TypeTag) bool {
	_, ok := typeKinds[t]
	return ok
}

// NormalizeTypeTag returns t when recognized and TypeAsIs otherwise.
func NormalizeTypeTag(t TypeTag) TypeTag {
	if ValidTypeTag(t) {
		return t
	}
	return TypeAsIs
}

// Kind returns the value family of the tag. Unknown tags are strings.
func (t TypeTag) Kind() Kind {
	return typeKinds[NormalizeTypeTag(t)]
}

// reservedShorts cannot be claimed by options; the parser owns them.
var reservedShorts = map[string]bool{"h": true}

// OptionSpec is one declared option.
type OptionSpec struct {
	Name        string
	Short       string // empty when the option has no short alias
	Description string
	Type        TypeTag
	Default     any // nil when no default was declared
}

// HasDefault reports whether a default value was declared.
func (o OptionSpec) HasDefault() bool {
	return o.Default != nil
}

// OptionRegistry is the append-only option table of a single command.
type OptionRegistry struct {
	order  []string
	specs  map[string]OptionSpec
	shorts map[string]string // short alias -> option name
}

// NewOptionRegistry returns an empty table.
func NewOptionRegistry() *OptionRegistry {
	return &OptionRegistry{
		specs:  make(map[string]OptionSpec),
		shorts: make(map[string]string),
	}
}

// Add declares an option and returns the stored spec.
//
// An unrecognized type is stored as TypeAsIs. The short alias is dropped
// when it is empty, not a single ASCII letter or digit, reserved, or already claimed by
// another option of this registry. None of these cases is an error.
// Declaring a name twice replaces the earlier spec in place and keeps the
// short alias it claimed first.
func (r *OptionRegistry) Add(name, description string, typ TypeTag, short string, def any) OptionSpec {
	spec := OptionSpec{
		Name:        name,
		Description: description,
		Type:        NormalizeTypeTag(typ),
		Short:       r.validateShort(name, short),
		Default:     def,
	}

	if prev, exists := r.specs[name]; exists {
		if prev.Short != "" {
			spec.Short = prev.Short
		}
	} else {
		r.order = append(r.order, name)
	}

	r.specs[name] = spec
	if spec.Short != "" {
		r.shorts[spec.Short] = name
	}
	return spec
}

func (r *OptionRegistry) validateShort(name, short string) string {
	if len(short) != 1 || !isAlnum(short[0]) || reservedShorts[short] {
		return ""
	}
	if owner, taken := r.shorts[short]; taken && owner != name {
		return ""
	}
	return short
}

func isAlnum(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

// Lookup returns the spec for name.
func (r *OptionRegistry) Lookup(name string) (OptionSpec, bool) {
	s, ok := r.specs[name]
	return s, ok
}

// ShortOwner returns the option name bound to a short alias.
func (r *OptionRegistry) ShortOwner(short string) (string, bool) {
	name, ok := r.shorts[short]
	return name, ok
}

// Specs returns the options in declaration order.
func (r *OptionRegistry) Specs() []OptionSpec {
	out := make([]OptionSpec, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.specs[name])
	}
	return out
}

// Len returns the number of declared options.
func (r *OptionRegistry) Len() int { return len(r.order) }

// Table returns name -> [short, description, type, default?]. The short
// entry is false when the option has none; the default is only present when
// one was declared. The returned map is a copy.
func (r *OptionRegistry) Table() map[string][]any {
	table := make(map[string][]any, len(r.specs))
	for name, s := range r.specs {
		var short any = false
		if s.Short != "" {
			short = s.Short
		}
		row := []any{short, s.Description, string(s.Type)}
		if s.HasDefault() {
			row = append(row, s.Default)
		}
		table[name] = row
	}
	return table
}
