package entity

// Episode is one published audio item. The GUID is assigned when the
// episode is created and never changes afterwards, even across deletions.
type Episode struct {
	Title           string
	Description     string
	GUID            string // UUID text form
	Duration        int    // seconds
	PublicationDate Date
	AudioFormat     AudioFormat
	Path            string // Location of the audio blob, derived from GUID and format
}

// AudioDetails is what the metadata extractor reports for an audio stream.
type AudioDetails struct {
	AudioFormat AudioFormat
	Duration    int   // seconds
	Length      int64 // stream size in bytes
	Title       string
	Description string
}
