package types

// AppOption configures an App
type AppOption func(*App)

// SectionOption configures a Section
type SectionOption func(*Section)

// ActionOption configures an Action
type ActionOption func(*Action)

// FieldOption configures a Field
type FieldOption func(*Field)

// NewApp builds an app from options
func NewApp(title string, opts ...AppOption) App {
	a := App{Title: title}
	for _, opt := range opts {
		opt(&a)
	}
	return a
}

// WithBlurb sets the app subtitle
func WithBlurb(blurb string) AppOption {
	return func(a *App) { a.Blurb = blurb }
}

// WithGroups appends groups. Groups take precedence over ungrouped sections.
func WithGroups(groups ...Group) AppOption {
	return func(a *App) { a.Groups = append(a.Groups, groups...) }
}

// WithSections appends ungrouped sections
func WithSections(sections ...Section) AppOption {
	return func(a *App) { a.Sections = append(a.Sections, sections...) }
}

// NewGroup builds a group of sections
func NewGroup(title, blurb string, sections ...Section) Group {
	return Group{Title: title, Blurb: blurb, Sections: sections}
}

// NewSection builds a section from options
func NewSection(title string, opts ...SectionOption) Section {
	s := Section{Title: title}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithID overrides the slug derived from the title
func WithID(id string) SectionOption {
	return func(s *Section) { s.ID = id }
}

// WithRead sets the read rule
func WithRead(method, path string) SectionOption {
	return func(s *Section) {
		if method == "" {
			method = MethodGet
		}
		s.Read = &ReadRule{Method: method, Path: path}
	}
}

// WithQuery sets query values sent with GET actions and copied to the store
func WithQuery(query map[string]any) SectionOption {
	return func(s *Section) { s.Query = query }
}

// WithMockValue sets a static fallback payload
func WithMockValue(value any) SectionOption {
	return func(s *Section) { s.Mock = &Mock{Value: value} }
}

// WithMockGenerator sets a fallback payload generator
func WithMockGenerator(gen MockGenerator) SectionOption {
	return func(s *Section) { s.Mock = &Mock{Generate: gen} }
}

// WithDisplay sets the display rule
func WithDisplay(d Display) SectionOption {
	return func(s *Section) { s.Display = d }
}

// WithListTemplate shows response rows through a per-row template
func WithListTemplate(tpl string) SectionOption {
	return func(s *Section) {
		s.Display.Kind = DisplayList
		s.Display.Template = tpl
	}
}

// WithListFrom shows rows read from a store path
func WithListFrom(path, tpl string) SectionOption {
	return func(s *Section) {
		s.Display.Kind = DisplayList
		s.Display.From = path
		s.Display.Template = tpl
	}
}

// WithTable shows rows as a table
func WithTable(path string) SectionOption {
	return func(s *Section) {
		s.Display.Kind = DisplayTable
		s.Display.From = path
	}
}

// WithKPIs shows labelled figures
func WithKPIs(kpis ...KPI) SectionOption {
	return func(s *Section) {
		s.Display.Kind = DisplayKPI
		s.Display.KPIs = kpis
	}
}

// WithStoreValue shows a single store key through an optional template
func WithStoreValue(key, tpl string) SectionOption {
	return func(s *Section) {
		s.Display.Kind = DisplayStoreValue
		s.Display.Key = key
		s.Display.Template = tpl
	}
}

// WithMeta sets the summary line template
func WithMeta(tpl, path string) SectionOption {
	return func(s *Section) { s.Meta = &Meta{Template: tpl, Path: path} }
}

// WithFields appends section fields
func WithFields(fields ...Field) SectionOption {
	return func(s *Section) { s.Fields = append(s.Fields, fields...) }
}

// WithActions appends section actions
func WithActions(actions ...Action) SectionOption {
	return func(s *Section) { s.Actions = append(s.Actions, actions...) }
}

// WithRowFields appends per-row fields
func WithRowFields(fields ...Field) SectionOption {
	return func(s *Section) { s.RowFields = append(s.RowFields, fields...) }
}

// WithRowActions appends per-row actions
func WithRowActions(actions ...Action) SectionOption {
	return func(s *Section) { s.RowActions = append(s.RowActions, actions...) }
}

// WithSectionStore maps store keys to paths in read responses
func WithSectionStore(mapping map[string]string) SectionOption {
	return func(s *Section) { s.StoreMap = mapping }
}

// WithLinks appends static links
func WithLinks(links ...Link) SectionOption {
	return func(s *Section) { s.Links = append(s.Links, links...) }
}

// WithLive makes the section a live channel section
func WithLive(live LiveConfig) SectionOption {
	return func(s *Section) { s.Live = &live }
}

// WithOnRender sets the post-render hook
func WithOnRender(hook RenderHook) SectionOption {
	return func(s *Section) { s.OnRender = hook }
}

// Hidden suppresses the section output block
func Hidden() SectionOption {
	return func(s *Section) { s.Hidden = true }
}

// NoRefresh excludes the section from post-action refresh
func NoRefresh() SectionOption {
	return func(s *Section) { s.NoRefresh = true }
}

// NewAction builds an action from options
func NewAction(label, method, path string, opts ...ActionOption) Action {
	a := Action{Label: label, Method: method, Path: path}
	for _, opt := range opts {
		opt(&a)
	}
	return a
}

// WithConfirm asks before the action runs
func WithConfirm(message string) ActionOption {
	return func(a *Action) { a.Confirm = message }
}

// WithActionFields appends action fields
func WithActionFields(fields ...Field) ActionOption {
	return func(a *Action) { a.Fields = append(a.Fields, fields...) }
}

// WithBody sets static body values
func WithBody(body map[string]any) ActionOption {
	return func(a *Action) { a.Body = body }
}

// WithBearer injects a bearer token read from key
func WithBearer(key string) ActionOption {
	return func(a *Action) { a.Auth = &Auth{Mode: AuthBearer, TokenKey: key} }
}

// WithBasic injects basic credentials read from two keys
func WithBasic(userKey, passKey string) ActionOption {
	return func(a *Action) { a.Auth = &Auth{Mode: AuthBasic, UserKey: userKey, PassKey: passKey} }
}

// WithStore maps store keys to response paths
func WithStore(mapping map[string]string) ActionOption {
	return func(a *Action) { a.StoreMap = mapping }
}

// WithHeaderStore maps store keys to response header names
func WithHeaderStore(mapping map[string]string) ActionOption {
	return func(a *Action) { a.HeaderStoreMap = mapping }
}

// WithHeaders sets templated request headers
func WithHeaders(headers map[string]string) ActionOption {
	return func(a *Action) { a.Headers = headers }
}

// WithSet writes store values before the request
func WithSet(set map[string]any) ActionOption {
	return func(a *Action) { a.Set = set }
}

// WithAdjust applies optimistic numeric updates before the request
func WithAdjust(adjustments ...Adjustment) ActionOption {
	return func(a *Action) { a.Adjust = append(a.Adjust, adjustments...) }
}

// WithCredentials sends and records cookies
func WithCredentials() ActionOption {
	return func(a *Action) { a.Credentials = true }
}

// Local skips the network entirely
func Local() ActionOption {
	return func(a *Action) { a.Local = true }
}

// RefreshAll refreshes every section after the action instead of the owner
func RefreshAll() ActionOption {
	return func(a *Action) { a.RefreshAll = true }
}

// WithCustom replaces the request with caller code
func WithCustom(handler CustomHandler) ActionOption {
	return func(a *Action) { a.Custom = handler }
}

// NewField builds a field. A bare value picks the type the way declarations do.
func NewField(key string, value any, opts ...FieldOption) Field {
	f := FieldSpec{Value: value}.Normalize(key)
	for _, opt := range opts {
		opt(&f)
	}
	return f
}

// WithLabel sets the field label
func WithLabel(label string) FieldOption {
	return func(f *Field) { f.Label = label }
}

// WithPlaceholder sets the field placeholder
func WithPlaceholder(text string) FieldOption {
	return func(f *Field) { f.Placeholder = text }
}

// WithType overrides the field type
func WithType(fieldType string) FieldOption {
	return func(f *Field) { f.Type = fieldType }
}

// WithOptions makes the field a select with static options
func WithOptions(options ...Option) FieldOption {
	return func(f *Field) {
		f.Type = FieldSelect
		f.Options = options
	}
}

// WithOptionsFrom makes the field a select sourced from a store list
func WithOptionsFrom(store, valueKey, labelKey string) FieldOption {
	return func(f *Field) {
		f.Type = FieldSelect
		f.OptionsFrom = &OptionsFrom{Store: store, Value: valueKey, Label: labelKey}
	}
}
