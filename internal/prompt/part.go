package prompt

// Part is one entry of a multi-part request body: TextPart or BinaryPart.
type Part interface {
	isPart()
}

type TextPart struct {
	Text string
}

// BinaryPart carries base64 data and its MIME type.
type BinaryPart struct {
	MimeType string
	Data     string
}

func (TextPart) isPart()   {}
func (BinaryPart) isPart() {}
