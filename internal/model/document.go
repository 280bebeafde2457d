package model

// Document is a plain key/value payload stored in the document database
type Document map[string]any

// DocumentRef addresses a single document by collection and key
type DocumentRef struct {
	Collection string
	Key        string
}

// Path returns the slash separated path of the document, e.g. "profiles/u1"
func (r DocumentRef) Path() string {
	return r.Collection + "/" + r.Key
}

// Clone returns a shallow copy of the document
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}
