package entity

const (
	DefaultLanguage = "en"
	DefaultCategory = "Comedy"
)

// Channel is the podcast's descriptive metadata. A deployment owns exactly
// one channel and it must be initialized before any episode operation.
type Channel struct {
	Title       string
	Link        string
	Description string
	Image       string // URL, empty when not set
	Author      string
	Email       string
	Language    string
	Category    string
	Explicit    bool
	Keywords    []string
}

// Normalized produces a copy with the language and category defaults
// filled in.
func (c Channel) Normalized() Channel {
	if c.Language == "" {
		c.Language = DefaultLanguage
	}
	if c.Category == "" {
		c.Category = DefaultCategory
	}

	return c
}
