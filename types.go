package modelmap

// TypeTag names the declared type of a target field.
type TypeTag string

const (
	TagString TypeTag = "string"
	TagInt    TypeTag = "int"
	TagFloat  TypeTag = "float"
	TagBool   TypeTag = "bool"
	TagTime   TypeTag = "time"
	TagAny    TypeTag = "any" // accepted as-is, no coercion
)

// FieldDescriptor describes one declared field of a target shape. It is
// produced by a schema capability (bind, dsl, schemayaml, ...) and only read
// by the engine.
type FieldDescriptor struct {
	Name     string
	Type     TypeTag
	Required bool
	IsList   bool
	Schema   Descriptor // non-nil when the field holds a model or a list of models
}

// IsModel reports whether the field holds a single nested model.
func (fd FieldDescriptor) IsModel() bool { return fd.Schema != nil && !fd.IsList }

// IsModelList reports whether the field holds a list of nested models.
func (fd FieldDescriptor) IsModelList() bool { return fd.Schema != nil && fd.IsList }

// Descriptor enumerates the declared fields of a model shape in order.
type Descriptor interface {
	Name() string
	Fields() []FieldDescriptor
}

// NewDescriptor returns a plain Descriptor over a fixed field list.
func NewDescriptor(name string, fields []FieldDescriptor) Descriptor {
	return &staticDescriptor{name: name, fields: fields}
}

type staticDescriptor struct {
	name   string
	fields []FieldDescriptor
}

func (d *staticDescriptor) Name() string              { return d.name }
func (d *staticDescriptor) Fields() []FieldDescriptor { return d.fields }

// ValueKind tags the shape of one populated source field.
type ValueKind int

const (
	KindPrimitive ValueKind = iota // Value holds a literal (string, number, time, ...).
	KindModel                      // Value holds an Instance.
	KindModelList                  // Value holds []Instance.
)

// FieldValue is one populated field of a source instance.
type FieldValue struct {
	Name  string
	Kind  ValueKind
	Value any
}

// Instance is a read-only view over one populated source model. Adapters
// (bind.Instance for Go structs) turn concrete representations into this
// shape so the Traverser stays polymorphic over source representations.
type Instance interface {
	Name() string
	Fields() []FieldValue
}

// Discovery is one named value found while walking a source graph, together
// with its nesting trail. Discoveries are transient: a sequence exists per
// matching pass and is discarded afterwards.
type Discovery struct {
	Name  string
	Value any
	Path  []string
	Depth int
}

// Coercer converts a discovered value to a declared target type. The engine
// owns only the decision of when to call it; coerce.Default provides the
// stock implementation.
type Coercer interface {
	Coerce(v any, tag TypeTag) (any, error)
}

// TiePolicy picks among multiple same-named candidates found at different
// spots of the source graph. There is no provably correct choice here, so the
// policy is explicit and pluggable rather than baked in.
type TiePolicy int

const (
	ShallowestWins  TiePolicy = iota // Lowest depth wins; traversal order breaks ties.
	FirstSeenWins                    // First candidate in traversal order wins.
	RejectAmbiguous                  // Two or more candidates make the field unresolved.
)

// Options bundles per-build knobs.
type Options struct {
	Tie         TiePolicy
	Coercer     Coercer
	Sink        Sink
	StrictLists bool // One failing list element aborts the whole list.
	MaxListLen  int  // Safety limit when building lists of models.
	FailFast    bool // Stop at the first blocking record.
}

// Option mutates Options.
type Option func(*Options)

// WithTiePolicy selects the ambiguity tie-break policy.
func WithTiePolicy(p TiePolicy) Option { return func(o *Options) { o.Tie = p } }

// WithCoercer injects a custom coercion capability.
func WithCoercer(c Coercer) Option { return func(o *Options) { o.Coercer = c } }

// WithSink injects the structured event sink records are emitted to.
func WithSink(s Sink) Option { return func(o *Options) { o.Sink = s } }

// WithStrictLists makes any failing list element abort its list.
func WithStrictLists() Option { return func(o *Options) { o.StrictLists = true } }

// WithMaxListLen overrides the list-building safety limit.
func WithMaxListLen(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.MaxListLen = n
		}
	}
}

// WithFailFast stops the build at the first blocking record.
func WithFailFast() Option { return func(o *Options) { o.FailFast = true } }

const defaultMaxListLen = 100

func buildOptions(opts []Option) Options {
	o := Options{
		Tie:        ShallowestWins,
		Sink:       DiscardSink(),
		MaxListLen: defaultMaxListLen,
	}
	for _, fn := range opts {
		fn(&o)
	}
	if o.Coercer == nil {
		o.Coercer = identityCoercer{}
	}
	if o.Sink == nil {
		o.Sink = DiscardSink()
	}
	return o
}

// identityCoercer accepts values as-is. It keeps the engine usable without
// the coerce package wired in; real callers inject coerce.Default().
type identityCoercer struct{}

func (identityCoercer) Coerce(v any, _ TypeTag) (any, error) { return v, nil }
