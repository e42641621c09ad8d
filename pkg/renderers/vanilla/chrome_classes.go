package vanilla

// ChromeClass is a typed identifier for semantic chrome CSS classes.
type ChromeClass string

const (
	ClassForm    ChromeClass = "ff-form"
	ClassHeader  ChromeClass = "ff-header"
	ClassSection ChromeClass = "ff-section"
	ClassTable   ChromeClass = "form-table"
	ClassRow     ChromeClass = "ff-row"
	ClassField   ChromeClass = "ff-field"
	ClassActions ChromeClass = "ff-actions"
	ClassErrors  ChromeClass = "ff-errors"
)

func chromeClasses() map[string]string {
	return map[string]string{
		"form":    string(ClassForm),
		"header":  string(ClassHeader),
		"section": string(ClassSection),
		"table":   string(ClassTable),
		"row":     string(ClassRow),
		"field":   string(ClassField),
		"actions": string(ClassActions),
		"errors":  string(ClassErrors),
	}
}
