// Package host models what the admin host hands to an extension surface:
// the selected resources, the launch URL, navigation, and a close signal.
// Components receive it explicitly instead of reaching for a global.
package host

import (
	"errors"
	"net/url"
	"strconv"

	"github.com/idilsaglam/issuetracker/internal/i18n"
)

// Extension targets.
const (
	ActionExtension = "extension:issue-tracker-action"
	BlockExtension  = "extension:issue-tracker-block"

	IssueIDParam = "issueId"
)

var ErrNoSelection = errors.New("no resource selected")

// Resource is an entity selected in the admin, identified by its GID.
type Resource struct {
	ID string `json:"id"`
}

// Navigator moves to another extension surface.
type Navigator interface {
	Navigate(target string) error
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(target string) error

func (f NavigatorFunc) Navigate(target string) error { return f(target) }

// Context is the capability bag of one surface instance.
type Context struct {
	Selected   []Resource
	LaunchURL  string
	Navigator  Navigator
	Close      func()
	Translator i18n.Translator
}

// ResourceID returns the first selected resource.
func (c Context) ResourceID() (string, error) {
	if len(c.Selected) == 0 || c.Selected[0].ID == "" {
		return "", ErrNoSelection
	}
	return c.Selected[0].ID, nil
}

// LaunchParam reads a query parameter of the launch URL.
func (c Context) LaunchParam(name string) (string, bool) {
	if c.LaunchURL == "" {
		return "", false
	}
	u, err := url.Parse(c.LaunchURL)
	if err != nil {
		return "", false
	}
	v := u.Query().Get(name)
	return v, v != ""
}

// T translates through the context translator, falling back to the key.
func (c Context) T(key string) string {
	if c.Translator == nil {
		return key
	}
	return c.Translator.Translate(key)
}

// Navigate is a no-op when the host offers no navigation.
func (c Context) Navigate(target string) error {
	if c.Navigator == nil {
		return nil
	}
	return c.Navigator.Navigate(target)
}

// Done signals the host that the surface has finished.
func (c Context) Done() {
	if c.Close != nil {
		c.Close()
	}
}

// ActionTarget is the URL that opens the action surface, editing issueID
// when it is non-nil.
func ActionTarget(issueID *int) string {
	if issueID == nil {
		return ActionExtension
	}
	q := url.Values{}
	q.Set(IssueIDParam, strconv.Itoa(*issueID))
	return ActionExtension + "?" + q.Encode()
}
