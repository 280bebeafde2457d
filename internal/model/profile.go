package model

// ProfilesCollection is the document collection holding user profiles
const ProfilesCollection = "profiles"

// DefaultProfileName is written to every new profile.
// It is a placeholder and is not derived from signup input.
const DefaultProfileName = "Henk"

// Profile is the typed view of a profile document
type Profile struct {
	AccountID AccountID
	Name      string
}

// ProfileRef returns the document reference for an account's profile
func ProfileRef(id AccountID) DocumentRef {
	return DocumentRef{Collection: ProfilesCollection, Key: string(id)}
}

// NewProfileDocument builds the payload written at signup
func NewProfileDocument() Document {
	return Document{"name": DefaultProfileName}
}

// ProfileFromDocument converts a stored profile document
func ProfileFromDocument(id AccountID, doc Document) Profile {
	name, _ := doc["name"].(string)
	return Profile{AccountID: id, Name: name}
}
