package diff

import (
	"encoding/json"
	"fmt"
)

// Action is the attribute-change operation.
type Action uint8

const (
	ActionSet    Action = iota // set or overwrite an attribute
	ActionRemove               // remove an attribute
)

// String returns the string representation of the Action.
func (a Action) String() string {
	switch a {
	case ActionSet:
		return "set"
	case ActionRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the action as its wire string.
func (a Action) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON decodes the wire string form.
func (a *Action) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "set":
		*a = ActionSet
	case "remove":
		*a = ActionRemove
	default:
		return fmt.Errorf("diff: unknown attribute action %q", s)
	}
	return nil
}

// AttrChange is one attribute mutation within an attribute-only patch.
type AttrChange struct {
	Action Action `json:"action"`
	Name   string `json:"name"`
	Value  string `json:"value,omitempty"`
}

// Patch is one unit of change, addressed by an element-child index path
// descending from the document body of the pre-patch DOM. Exactly one of
// Content (outerHTML replacement) or Attrs (attribute-only update) is
// populated.
type Patch struct {
	Path    []int        `json:"path"`
	Content *string      `json:"content,omitempty"`
	Attrs   []AttrChange `json:"attrs,omitempty"`
}

// IsContent reports whether the patch replaces the target's outer markup.
func (p *Patch) IsContent() bool { return p.Content != nil }

func pathKey(path []int) string {
	return fmt.Sprint(path)
}
