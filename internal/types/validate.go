package types

import (
	"errors"
	"fmt"
	"strings"

	"github.com/studiowebux/restui/internal/resolver"
)

var validMethods = map[string]bool{
	MethodGet:    true,
	MethodPost:   true,
	MethodPut:    true,
	MethodDelete: true,
	MethodUpload: true,
	"PATCH":      true,
}

// AllSections returns the sections of the app in declaration order.
// Groups take precedence over ungrouped sections.
func (a *App) AllSections() []*Section {
	var out []*Section
	if len(a.Groups) > 0 {
		for gi := range a.Groups {
			for si := range a.Groups[gi].Sections {
				out = append(out, &a.Groups[gi].Sections[si])
			}
		}
		return out
	}
	for i := range a.Sections {
		out = append(out, &a.Sections[i])
	}
	return out
}

// Validate reports every configuration error of the tree at once
func Validate(app App) error {
	var errs []error
	seen := make(map[string]bool)

	for _, s := range app.AllSections() {
		key := s.Key()
		if key == "" {
			errs = append(errs, Errorf(s.Title, "section needs a title or an id"))
			continue
		}
		if seen[key] {
			errs = append(errs, Errorf(key, "duplicate section id"))
		}
		seen[key] = true

		if s.Read != nil {
			if s.Read.Path == "" {
				errs = append(errs, Errorf(key+".read", "missing path"))
			}
			if m := strings.ToUpper(s.Read.Method); m != "" && !validMethods[m] {
				errs = append(errs, Errorf(key+".read", "unknown method %q", s.Read.Method))
			}
			if s.Live != nil {
				errs = append(errs, Errorf(key, "a live section cannot also have a read rule"))
			}
		}
		if s.Live != nil && s.Live.URL == "" {
			errs = append(errs, Errorf(key+".live", "missing url"))
		}
		if s.Display.Kind == DisplayStoreValue && s.Display.Key == "" {
			errs = append(errs, Errorf(key+".display", "store display needs a key"))
		}
		if s.Display.Kind == DisplayCustom && s.Display.Render == nil {
			errs = append(errs, Errorf(key+".display", "custom display needs a renderer"))
		}
		errs = append(errs, validateMapping(key+".store", s.StoreMap)...)

		for i := range s.Actions {
			errs = append(errs, validateAction(fmt.Sprintf("%s.actions[%d]", key, i), &s.Actions[i])...)
		}
		for i := range s.RowActions {
			errs = append(errs, validateAction(fmt.Sprintf("%s.rowActions[%d]", key, i), &s.RowActions[i])...)
		}
	}

	return errors.Join(errs...)
}

func validateAction(path string, a *Action) []error {
	var errs []error
	if a.Label == "" {
		errs = append(errs, Errorf(path, "missing label"))
	}
	if !validMethods[a.HTTPMethod()] {
		errs = append(errs, Errorf(path, "unknown method %q", a.Method))
	}
	if !a.Local && a.Custom == nil && a.Path == "" {
		errs = append(errs, Errorf(path, "networked action needs a path"))
	}
	if a.Auth != nil {
		switch strings.ToLower(a.Auth.Mode) {
		case AuthBearer:
			if a.Auth.TokenKey == "" {
				errs = append(errs, Errorf(path+".auth", "bearer auth needs a token key"))
			}
		case AuthBasic:
			if a.Auth.UserKey == "" || a.Auth.PassKey == "" {
				errs = append(errs, Errorf(path+".auth", "basic auth needs user and pass keys"))
			}
		default:
			errs = append(errs, Errorf(path+".auth", "unknown auth mode %q", a.Auth.Mode))
		}
	}
	for _, adj := range a.Adjust {
		if adj.Key == "" {
			errs = append(errs, Errorf(path+".adjust", "adjustment needs a key"))
		}
	}
	errs = append(errs, validateMapping(path+".store", a.StoreMap)...)
	return errs
}

func validateMapping(path string, mapping map[string]string) []error {
	var errs []error
	for key, expr := range mapping {
		if err := resolver.Check(expr); err != nil {
			errs = append(errs, Errorf(path+"."+key, "%v", err))
		}
	}
	return errs
}
