package fields

// Level tells a page apart from the fields it holds.
type Level int

const (
	LevelPage Level = iota
	LevelField
)

// Variables is an insertion-ordered string map.
type Variables struct {
	names  []string
	values map[string]string
}

// Set stores value under name. A name keeps the position it was first set at.
func (v *Variables) Set(name, value string) {
	if v.values == nil {
		v.values = make(map[string]string)
	}
	if _, ok := v.values[name]; !ok {
		v.names = append(v.names, name)
	}
	v.values[name] = value
}

func (v *Variables) Get(name string) (string, bool) {
	value, ok := v.values[name]
	return value, ok
}

// Value returns the variable or "" when it is not set.
func (v *Variables) Value(name string) string {
	return v.values[name]
}

// Names lists the variable names in the order they were first set.
func (v *Variables) Names() []string {
	return v.names
}

func (v *Variables) Len() int {
	return len(v.names)
}

// Map copies the variables into a plain map.
func (v *Variables) Map() map[string]string {
	out := make(map[string]string, len(v.names))
	for _, n := range v.names {
		out[n] = v.values[n]
	}
	return out
}

// Field is a node of a page's field tree. A page is the root; its children
// are fields, a table field's children are line items and a line item's
// children are cells. Names are unique among siblings.
type Field struct {
	Level    Level
	Name     string
	Type     string
	Text     string
	Status   int
	Vars     Variables
	Children []*Field
}

// NewPage returns an empty page named after its page id.
func NewPage(id string) *Field {
	return &Field{Level: LevelPage, Name: id}
}

// ChildIndex returns the index of the child called name, or -1.
func (f *Field) ChildIndex(name string) int {
	for i, c := range f.Children {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Child returns the child called name, or nil.
func (f *Field) Child(name string) *Field {
	if i := f.ChildIndex(name); i >= 0 {
		return f.Children[i]
	}
	return nil
}

// AddChild appends a new field called name.
func (f *Field) AddChild(name string) *Field {
	child := &Field{Level: LevelField, Name: name}
	f.Children = append(f.Children, child)
	return child
}

// FindOrAdd returns the child called name, creating it when missing.
func (f *Field) FindOrAdd(name string) *Field {
	if c := f.Child(name); c != nil {
		return c
	}
	return f.AddChild(name)
}

// DeleteChild removes the i-th child.
func (f *Field) DeleteChild(i int) {
	f.Children = append(f.Children[:i], f.Children[i+1:]...)
}

// IsTable reports whether the field has line items that themselves hold
// fields.
func (f *Field) IsTable() bool {
	if f.Level != LevelField || len(f.Children) == 0 {
		return false
	}
	return len(f.Children[0].Children) > 0
}

// Walk visits f's descendants depth first, parents before children, passing
// each node's parent.
func (f *Field) Walk(fn func(parent, node *Field)) {
	for _, c := range f.Children {
		fn(f, c)
		c.Walk(fn)
	}
}
