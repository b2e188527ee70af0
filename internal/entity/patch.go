package entity

// ChannelPatch is a sparse channel update. A nil field means "leave the
// current value alone"; a non-nil field overwrites it, so Explicit=false
// and an empty Keywords slice are real values rather than omissions.
type ChannelPatch struct {
	Title       *string
	Link        *string
	Description *string
	Image       *string
	Author      *string
	Email       *string
	Language    *string
	Category    *string
	Explicit    *bool
	Keywords    *[]string
}

// Apply merges the patch onto a channel and produces the result.
func (p ChannelPatch) Apply(c Channel) Channel {
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.Link != nil {
		c.Link = *p.Link
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.Image != nil {
		c.Image = *p.Image
	}
	if p.Author != nil {
		c.Author = *p.Author
	}
	if p.Email != nil {
		c.Email = *p.Email
	}
	if p.Language != nil {
		c.Language = *p.Language
	}
	if p.Category != nil {
		c.Category = *p.Category
	}
	if p.Explicit != nil {
		c.Explicit = *p.Explicit
	}
	if p.Keywords != nil {
		c.Keywords = *p.Keywords
	}

	return c
}

// EpisodePatch is a sparse episode update. GUID, audio format and the blob
// itself are not patchable.
type EpisodePatch struct {
	Title           *string
	Description     *string
	Duration        *int
	PublicationDate *Date
}

// Apply merges the patch onto an episode. The second result reports
// whether the publication date changed, which forces a re-sort of the
// stored collection.
func (p EpisodePatch) Apply(e Episode) (Episode, bool) {
	if p.Title != nil {
		e.Title = *p.Title
	}
	if p.Description != nil {
		e.Description = *p.Description
	}
	if p.Duration != nil {
		e.Duration = *p.Duration
	}

	dateChanged := false
	if p.PublicationDate != nil && !p.PublicationDate.Equal(e.PublicationDate) {
		e.PublicationDate = *p.PublicationDate
		dateChanged = true
	}

	return e, dateChanged
}
