package main

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/kangruixiang/curator/internal/curator"
)

// ViewFlag selects the note list view.
type ViewFlag curator.View

// Set implements pflag.Value.
func (v *ViewFlag) Set(value string) error {
	for _, view := range curator.Views {
		if value == string(view) {
			*v = ViewFlag(view)
			return nil
		}
	}
	names := make([]string, 0, len(curator.Views))
	for _, view := range curator.Views {
		names = append(names, string(view))
	}
	return fmt.Errorf("invalid value %q, valid values are %s", value, strings.Join(names, ", "))
}

// String implements pflag.Value.
func (v *ViewFlag) String() string {
	if v == nil {
		return ""
	}
	return string(*v)
}

// Type implements pflag.Value.
func (v *ViewFlag) Type() string {
	return "ViewFlag"
}

// ActionFlag is a bulk operation applied to selected notes.
type ActionFlag string

const (
	ActionDelete    ActionFlag = "delete"
	ActionRestore   ActionFlag = "restore"
	ActionArchive   ActionFlag = "archive"
	ActionUnarchive ActionFlag = "unarchive"
	ActionMove      ActionFlag = "move"
	ActionAddTag    ActionFlag = "add-tag"
	ActionRemoveTag ActionFlag = "remove-tag"
	ActionClearTags ActionFlag = "clear-tags"
)

var actions = []ActionFlag{
	ActionDelete,
	ActionRestore,
	ActionArchive,
	ActionUnarchive,
	ActionMove,
	ActionAddTag,
	ActionRemoveTag,
	ActionClearTags,
}

// Set implements pflag.Value.
func (a *ActionFlag) Set(value string) error {
	for _, action := range actions {
		if value == string(action) {
			*a = action
			return nil
		}
	}
	return fmt.Errorf("invalid value %q, valid values are %v", value, actions)
}

// String implements pflag.Value.
func (a *ActionFlag) String() string {
	if a == nil {
		return ""
	}
	return string(*a)
}

// Type implements pflag.Value.
func (a *ActionFlag) Type() string {
	return "ActionFlag"
}

var (
	_ pflag.Value = (*ViewFlag)(nil)
	_ pflag.Value = (*ActionFlag)(nil)
)
