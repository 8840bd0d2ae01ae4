package model

import "time"

// Fact is a canned reply looked up by name and language. The key is
// "<name>-<lang>", with "-en" as the fallback language.
type Fact struct {
	Name      string
	Lang      string
	Text      string
	Author    string
	UpdatedAt time.Time
}

// Key returns the lookup key for the fact
func (f *Fact) Key() string {
	return f.Name + "-" + f.Lang
}
