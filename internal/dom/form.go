package dom

import (
	"strings"

	"github.com/MrSnakeDoc/auctionsync/internal/domain"
)

// FormFields collects the successful controls of a form, in document order,
// the way a browser builds a form data set.
func FormFields(form *Element) []domain.Field {
	var fields []domain.Field
	for _, el := range collect(form.n, isControl) {
		name, _ := el.Attr("name")
		if name == "" {
			continue
		}
		if _, disabled := el.Attr("disabled"); disabled {
			continue
		}
		if el.Tag() == "input" {
			switch inputType(el) {
			case "submit", "button", "reset", "image", "file":
				continue
			case "checkbox", "radio":
				if _, checked := el.Attr("checked"); !checked {
					continue
				}
				if _, ok := el.Attr("value"); !ok {
					fields = append(fields, domain.Field{Name: name, Value: "on"})
					continue
				}
			}
		}
		fields = append(fields, domain.Field{Name: name, Value: el.Value()})
	}
	return fields
}

// SetField sets the value of the first named control. It returns false if
// the form has no such control.
func SetField(form *Element, name, value string) bool {
	for _, el := range collect(form.n, isControl) {
		if n, _ := el.Attr("name"); n == name {
			el.SetValue(value)
			return true
		}
	}
	return false
}

// ResetText empties the user-editable text controls of a form.
// Hidden inputs (e.g. the CSRF middleware token) are kept.
func ResetText(form *Element) {
	for _, el := range collect(form.n, isControl) {
		switch el.Tag() {
		case "textarea":
			el.Clear()
		case "input":
			switch inputType(el) {
			case "text", "search", "email", "url", "tel", "number":
				el.SetAttr("value", "")
			}
		}
	}
}

func isControl(el *Element) bool {
	switch el.Tag() {
	case "input", "textarea", "select":
		return true
	}
	return false
}

func inputType(el *Element) string {
	t, ok := el.Attr("type")
	if !ok || t == "" {
		return "text"
	}
	return strings.ToLower(t)
}
