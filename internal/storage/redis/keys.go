package redis

import (
	"fmt"

	"github.com/mcoot/fitness-tracking/internal/model"
)

// keys builds Redis keys under a fixed prefix
type keys struct {
	prefix string
}

// account returns the Redis key for an Account
func (k keys) account(id model.AccountID) string {
	return fmt.Sprintf("%s:account:%s", k.prefix, id)
}

// credential returns the Redis key for a Credential
func (k keys) credential(id model.AccountID) string {
	return fmt.Sprintf("%s:credential:%s", k.prefix, id)
}

// emailIndex returns the Redis key for the email -> account_id index
func (k keys) emailIndex(email string) string {
	return fmt.Sprintf("%s:idx:email:%s", k.prefix, email)
}

// document returns the Redis key for a document
func (k keys) document(ref model.DocumentRef) string {
	return fmt.Sprintf("%s:doc:%s:%s", k.prefix, ref.Collection, ref.Key)
}
